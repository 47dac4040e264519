// Package responder turns ranked results into short natural-language
// answers using per-intent text templates.
package responder

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"chatsearch/config"
	"chatsearch/internal/adapter/analyzer"
	"chatsearch/internal/domain"
)

// Template keys used when no intent-specific template exists.
const (
	KeySales   = "sales"
	KeyChat    = "chat"
	KeyDefault = "default"
	KeyEmpty   = "empty"
)

// TemplateData is what every answer template can reference.
type TemplateData struct {
	Title       string
	Category    string
	Description string
	Price       string
	Features    string
	Badge       string
	Contact     string
	Intent      string
	Count       int
	Attributes  map[string]string
}

// TemplateComposer implements port.ResponseComposer.
type TemplateComposer struct {
	templates   map[string]*template.Template
	contact     string
	apology     string
	currency    string
	printer     *message.Printer
	maxFeatures int
	salesPrefix string
	chatPrefix  string
}

// NewTemplateComposer parses every configured template up front.
func NewTemplateComposer(cfg config.ResponseConfig, salesPrefix, chatPrefix string) (*TemplateComposer, error) {
	c := &TemplateComposer{
		templates:   make(map[string]*template.Template, len(cfg.Templates)),
		contact:     cfg.Contact,
		apology:     cfg.Apology,
		currency:    cfg.Currency,
		printer:     message.NewPrinter(localeTag(cfg.Locale)),
		maxFeatures: cfg.MaxFeatures,
		salesPrefix: salesPrefix,
		chatPrefix:  chatPrefix,
	}
	for key, text := range cfg.Templates {
		tmpl, err := template.New(key).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", key, err)
		}
		c.templates[key] = tmpl
	}
	return c, nil
}

func localeTag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.Indonesian
	}
	return tag
}

// Compose renders the answer for one sub-query.
func (c *TemplateComposer) Compose(ctx context.Context, req domain.ComposeRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := TemplateData{
		Contact: c.contact,
		Intent:  req.Intent,
		Count:   len(req.Result.Results),
	}

	top, ok := req.Result.Top()
	if !ok && !req.Conversational {
		return c.render(KeyEmpty, data, req.Sentiment)
	}
	if ok {
		item := top.Item
		data.Title = item.Title
		data.Category = item.Category
		data.Description = firstSentence(item.Description)
		data.Badge = item.Badge
		data.Price = c.FormatPrice(item)
		if req.Attributes != nil {
			data.Attributes = req.Attributes(item)
		}
		data.Features = c.features(item, data.Attributes)
	}

	return c.render(c.templateKey(req.Intent, req.Conversational), data, req.Sentiment)
}

func (c *TemplateComposer) templateKey(intent string, conversational bool) string {
	if _, ok := c.templates[intent]; ok {
		return intent
	}
	switch {
	case c.salesPrefix != "" && strings.HasPrefix(intent, c.salesPrefix):
		if _, ok := c.templates[KeySales]; ok {
			return KeySales
		}
	case conversational || (c.chatPrefix != "" && strings.HasPrefix(intent, c.chatPrefix)):
		if _, ok := c.templates[KeyChat]; ok {
			return KeyChat
		}
	}
	return KeyDefault
}

func (c *TemplateComposer) render(key string, data TemplateData, sentiment string) (string, error) {
	tmpl, ok := c.templates[key]
	if !ok {
		return "", nil
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", key, err)
	}
	answer := strings.Join(strings.Fields(buf.String()), " ")
	if answer != "" && sentiment == "negative" && c.apology != "" {
		answer = c.apology + " " + answer
	}
	return answer, nil
}

// FormatPrice renders the effective price in the configured locale, noting
// the list price when the item is on sale.
func (c *TemplateComposer) FormatPrice(item domain.CatalogItem) string {
	price, ok := item.EffectivePrice()
	if !ok {
		return ""
	}
	s := c.money(price)
	if item.SalePrice != nil && item.Price != nil && *item.Price > *item.SalePrice {
		s += c.printer.Sprintf(" (dari %s)", c.money(*item.Price))
	}
	return s
}

func (c *TemplateComposer) money(v float64) string {
	if v == float64(int64(v)) {
		return strings.TrimSpace(c.currency + " " + c.printer.Sprintf("%d", int64(v)))
	}
	return strings.TrimSpace(c.currency + " " + c.printer.Sprintf("%.2f", v))
}

func (c *TemplateComposer) features(item domain.CatalogItem, attrs map[string]string) string {
	var list []string
	if f := attrs[analyzer.AttrFeatures]; f != "" {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				list = append(list, part)
			}
		}
	}
	if len(list) == 0 {
		list = item.Keywords
	}
	if c.maxFeatures > 0 && len(list) > c.maxFeatures {
		list = list[:c.maxFeatures]
	}
	return strings.Join(list, ", ")
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".\n"); i >= 0 {
		return strings.TrimSpace(text[:i+1])
	}
	return text
}
