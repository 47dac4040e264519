package analyzer

import (
	"strconv"
	"strings"

	"chatsearch/internal/domain"
)

// Attribute keys filled from schema fields rather than free text.
const (
	AttrPrice       = "price"
	AttrSalePrice   = "sale_price"
	AttrBadge       = "badge"
	AttrRecommended = "recommended"
	AttrFeatures    = "features"
	AttrCategory    = "category"
)

// ExtractAttributes collects named attributes of an item: regex extractors
// over description and content, schema fields passed through, the feature
// list, and finally any extra fields not already set.
func (p *Preprocessor) ExtractAttributes(item domain.CatalogItem) map[string]string {
	attrs := make(map[string]string)
	text := item.Description + "\n" + item.Content

	for _, ex := range p.extractors {
		m := ex.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if v := strings.TrimSpace(m[1]); v != "" {
			attrs[ex.name] = v
		}
	}

	if item.Category != "" {
		attrs[AttrCategory] = item.Category
	}
	if item.Price != nil {
		attrs[AttrPrice] = formatNumber(*item.Price)
	}
	if item.SalePrice != nil {
		attrs[AttrSalePrice] = formatNumber(*item.SalePrice)
	}
	if item.Badge != "" {
		attrs[AttrBadge] = item.Badge
	}
	if item.Recommended {
		attrs[AttrRecommended] = "true"
	}

	if p.features != nil {
		var features []string
		for _, m := range p.features.FindAllStringSubmatch(text, -1) {
			if len(m) < 2 {
				continue
			}
			if f := strings.TrimSpace(m[1]); f != "" {
				features = append(features, f)
			}
		}
		if len(features) > 0 {
			attrs[AttrFeatures] = strings.Join(features, ", ")
		}
	}

	for k, v := range item.Extra {
		if _, ok := attrs[k]; !ok && v != "" {
			attrs[k] = v
		}
	}

	return attrs
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
