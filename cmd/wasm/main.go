//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"chatsearch/config"
	"chatsearch/internal/adapter/fs"
	"chatsearch/internal/usecase"
)

var engine *usecase.Engine

func init() {
	var err error
	engine, err = usecase.NewEngine(config.DefaultConfig())
	if err != nil {
		panic(err)
	}
}

func main() {
	c := make(chan struct{})

	js.Global().Set("chatsearchLoad", js.FuncOf(loadCatalog))
	js.Global().Set("chatsearchSearch", js.FuncOf(search))
	js.Global().Set("chatsearchCompare", js.FuncOf(compare))
	js.Global().Set("chatsearchReset", js.FuncOf(resetSession))
	js.Global().Set("chatsearchStats", js.FuncOf(getStats))

	<-c
}

// loadCatalog(content, format) replaces the catalog. format is "json"
// (the default) or "yaml".
func loadCatalog(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: chatsearchLoad(content, [format])")
	}

	ext := ".json"
	if len(args) > 1 && (args[1].String() == "yaml" || args[1].String() == "yml") {
		ext = ".yaml"
	}

	items, err := fs.ParseCatalog([]byte(args[0].String()), ext)
	if err != nil {
		return makeError("parse failed: " + err.Error())
	}
	if err := engine.SetCatalog(items); err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
		"items":   len(items),
	})
}

// search(sessionID, text)
func search(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: chatsearchSearch(sessionID, text)")
	}

	result, err := engine.Search(context.Background(), args[0].String(), args[1].String())
	if err != nil {
		return makeError(err.Error())
	}
	return marshal(result)
}

// compare(text, [category], [maxItems])
func compare(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: chatsearchCompare(text, [category], [maxItems])")
	}

	category := ""
	if len(args) > 1 {
		category = args[1].String()
	}
	maxItems := 0
	if len(args) > 2 {
		maxItems = args[2].Int()
	}

	result, err := engine.CompareProducts(context.Background(), args[0].String(), category, maxItems)
	if err != nil {
		return makeError(err.Error())
	}
	return marshal(result)
}

func resetSession(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: chatsearchReset(sessionID)")
	}
	if err := engine.ResetSession(context.Background(), args[0].String()); err != nil {
		return makeError(err.Error())
	}
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	items := engine.Items()

	categories := make(map[string]int)
	for _, item := range items {
		categories[item.Category]++
	}

	return makeResult(map[string]interface{}{
		"totalItems": len(items),
		"categories": categories,
	})
}

func marshal(v interface{}) interface{} {
	result, err := json.Marshal(v)
	if err != nil {
		return makeError(err.Error())
	}
	return string(result)
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
