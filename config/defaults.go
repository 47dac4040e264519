package config

import "time"

// DefaultConfig returns the default configuration. Every call builds fresh
// tables so callers may modify the result freely.
func DefaultConfig() *Config {
	return &Config{
		Preprocess: PreprocessConfig{
			Language: "id",
			Phonetic: defaultPhonetic(),
			Synonyms: defaultSynonyms(),
			Entities: defaultEntities(),
			Extractors: []Extractor{
				{Name: "garansi", Pattern: `(?i)garansi\s+([^.,;\n]+)`},
				{Name: "warna", Pattern: `(?i)warna\s*:?\s*([^.,;\n]+)`},
				{Name: "kapasitas", Pattern: `(?i)(\d+\s?(?:GB|TB))`},
				{Name: "berat", Pattern: `(?i)berat\s*:?\s*([\d.,]+\s?(?:kg|gr|gram))`},
			},
			FeaturePattern: `(?m)^\s*[-•*]\s*(.+?)\s*$`,
			Positive:       []string{"bagus", "mantap", "keren", "suka", "puas", "murah", "cepat", "oke", "recommended", "terbaik", "good", "great"},
			Negative:       []string{"jelek", "mahal", "lambat", "kecewa", "rusak", "buruk", "lama", "parah", "bad", "kapok"},
		},
		Intent: IntentConfig{
			HighThreshold:        0.7,
			LowThreshold:         0.6,
			ContactTriggers:      []string{"kontak", "hubungi", "whatsapp", "wa", "telepon", "telp", "email", "cs", "admin", "customer service"},
			Conversational:       defaultConversational(),
			Sales:                defaultSales(),
			Training:             defaultTraining(),
			ContactLabel:         "chat_contact",
			ConversationalPrefix: "chat_",
			SalesPrefix:          "sales_",
			FallbackLabel:        "fuzzy",
		},
		Context: ContextConfig{
			TTL:               5 * time.Minute,
			MaxInteractions:   20,
			LockAbove:         80,
			UnlockBelow:       30,
			MaxAnaphoraLength: 25,
			ReferenceTriggers: []string{"itu", "ini", "tersebut", "-nya", "tadi", "barusan", "yang sama", "dia", "it", "that one", "this one"},
		},
		Scoring: ScoringConfig{
			Weights: Weights{
				Retrieval:           10,
				TokenMatch:          10,
				Sequence:            8,
				TitleSimilarity:     15,
				SimilarityThreshold: 0.4,
				TitleHit:            25,
				CategoryHit:         25,
				ContextCategory:     10,
				ContextItem:         30,
				Recommended:         30,
				Urgent:              10,
				UrgentStock:         25,
				SalesPrice:          30,
				SalesProduct:        20,
				CrawlerPenalty:      30,
			},
			StockPattern:    `(?i)stok|stock|ready|tersedia|inventory`,
			ProductPattern:  `(?i)produk|product|layanan|service|jasa|paket|smartphone|laptop|gadget|elektronik|aksesoris`,
			CrawlerCategory: "Halaman",
		},
		Search: SearchConfig{
			Limit:                  5,
			MinScore:               20,
			MinScoreConversational: 10,
			SplitPunctuation:       "?!;,",
			Connectors:             []string{"dan", "terus", "trus", "lalu", "serta", "kemudian", "and", "then", "also", "plus"},
			TriggerCategories:      defaultTriggerCategories(),
			AnswerJoiner:           "\n\n",
			MaxQueryLength:         500,
			ContextInjectScore:     0.9,
			ComparisonTriggers:     []string{"bandingkan", "banding", "perbandingan", "vs", "versus", "beda", "perbedaan", "compare", "lebih bagus", "mana yang lebih"},
			CompareMaxItems:        3,
		},
		Retrieval: RetrievalConfig{
			Index:     true,
			Threshold: 0.6,
			FieldWeights: FieldWeights{
				Title:       1.0,
				Keywords:    0.7,
				Description: 0.4,
				Content:     0.2,
			},
			CacheSize: 256,
			CacheTTL:  5 * time.Minute,
			Timeout:   3 * time.Second,
		},
		Response: ResponseConfig{
			Templates:   defaultTemplates(),
			Contact:     "Silakan hubungi admin kami lewat WhatsApp atau email yang tertera di halaman kontak.",
			Apology:     "Mohon maaf atas ketidaknyamanannya.",
			Currency:    "Rp",
			Locale:      "id",
			MaxFeatures: 5,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "chatsearch:session:",
				TTL:    30 * time.Minute,
			},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultPhonetic() Table {
	return Table{
		{Key: "berapa", Words: []string{"brp", "brapa", "berapah", "brapah"}},
		{Key: "harga", Words: []string{"hrg", "hrga", "harg"}},
		{Key: "gimana", Words: []string{"gmn", "gmana", "gimn", "bgmn"}},
		{Key: "tidak", Words: []string{"gak", "ga", "nggak", "enggak", "tdk", "gk", "ngga"}},
		{Key: "sudah", Words: []string{"udah", "udh", "sdh"}},
		{Key: "bisa", Words: []string{"bs", "bsa"}},
		{Key: "yang", Words: []string{"yg"}},
		{Key: "kirim", Words: []string{"krm", "kirm"}},
		{Key: "iphone", Words: []string{"ipon", "aipon", "ifon", "iphon"}},
		{Key: "samsung", Words: []string{"samsun", "samsang"}},
		{Key: "makasih", Words: []string{"mksh", "makasi", "thx", "tq", "trims"}},
		{Key: "tolong", Words: []string{"tlg"}},
		{Key: "stok", Words: []string{"stock", "setok"}},
		{Key: "fitur", Words: []string{"fiture", "ficur"}},
	}
}

func defaultSynonyms() Table {
	return Table{
		{Key: "harga", Words: []string{"biaya", "tarif", "price"}},
		{Key: "murah", Words: []string{"hemat", "terjangkau", "promo", "diskon"}},
		{Key: "hp", Words: []string{"handphone", "smartphone", "ponsel"}},
		{Key: "handphone", Words: []string{"hp", "smartphone"}},
		{Key: "beli", Words: []string{"order", "pesan", "checkout"}},
		{Key: "fitur", Words: []string{"spesifikasi", "keunggulan", "feature"}},
		{Key: "kirim", Words: []string{"pengiriman", "ongkir", "ekspedisi"}},
		{Key: "stok", Words: []string{"ready", "tersedia"}},
		{Key: "laptop", Words: []string{"notebook", "komputer"}},
		{Key: "garansi", Words: []string{"warranty", "jaminan"}},
		{Key: "bayar", Words: []string{"pembayaran", "transfer", "cicilan"}},
	}
}

func defaultEntities() Table {
	return Table{
		{Key: "isPremium", Words: []string{"premium", "pro", "max", "ultra", "flagship"}},
		{Key: "isBudget", Words: []string{"murah", "hemat", "terjangkau", "budget", "promo", "diskon"}},
		{Key: "needsShipping", Words: []string{"kirim", "ongkir", "pengiriman", "ekspedisi"}},
		{Key: "wantsWarranty", Words: []string{"garansi", "warranty", "resmi"}},
	}
}

func defaultConversational() Table {
	return Table{
		{Key: "greeting", Words: []string{"halo", "hai", "hallo", "hi", "hello", "pagi", "siang", "sore", "permisi", "assalamualaikum"}},
		{Key: "thanks", Words: []string{"makasih", "terima kasih", "thanks", "thank", "tengkyu"}},
		{Key: "bye", Words: []string{"bye", "dadah", "sampai jumpa"}},
		{Key: "identity", Words: []string{"bot", "kamu siapa", "siapa kamu"}},
	}
}

func defaultSales() Table {
	return Table{
		{Key: "harga", Words: []string{"harga", "berapa", "biaya", "tarif", "price", "cicilan"}},
		{Key: "beli", Words: []string{"beli", "order", "pesan", "checkout", "bayar"}},
		{Key: "fitur", Words: []string{"fitur", "spesifikasi", "spek", "kelebihan", "feature"}},
		{Key: "stok", Words: []string{"stok", "ready", "tersedia", "habis"}},
		{Key: "promo", Words: []string{"promo", "diskon", "murah", "sale", "potongan"}},
		{Key: "kirim", Words: []string{"kirim", "ongkir", "pengiriman", "antar"}},
	}
}

func defaultTriggerCategories() Table {
	return Table{
		{Key: "price", Words: []string{"harga", "berapa", "biaya", "tarif", "cicilan"}},
		{Key: "feature", Words: []string{"fitur", "spesifikasi", "spek", "kelebihan", "keunggulan"}},
		{Key: "stock", Words: []string{"stok", "ready", "tersedia"}},
		{Key: "shipping", Words: []string{"kirim", "ongkir", "pengiriman"}},
		{Key: "promo", Words: []string{"promo", "diskon", "potongan"}},
	}
}

func defaultTraining() []TrainingExample {
	return []TrainingExample{
		{Text: "berapa harga hp ini", Label: "sales_harga"},
		{Text: "harganya berapa kak", Label: "sales_harga"},
		{Text: "minta daftar harga lengkap", Label: "sales_harga"},
		{Text: "biaya paket ini berapa", Label: "sales_harga"},
		{Text: "saya mau beli", Label: "sales_beli"},
		{Text: "mau order dong", Label: "sales_beli"},
		{Text: "cara beli gimana", Label: "sales_beli"},
		{Text: "beli yang ini satu", Label: "sales_beli"},
		{Text: "fiturnya apa saja", Label: "sales_fitur"},
		{Text: "spesifikasi lengkapnya apa", Label: "sales_fitur"},
		{Text: "kelebihan produk ini apa", Label: "sales_fitur"},
		{Text: "stoknya masih ada", Label: "sales_stok"},
		{Text: "barang ready tidak", Label: "sales_stok"},
		{Text: "masih tersedia kak", Label: "sales_stok"},
		{Text: "ada promo tidak", Label: "sales_promo"},
		{Text: "lagi ada diskon", Label: "sales_promo"},
		{Text: "ongkir ke bandung berapa", Label: "sales_kirim"},
		{Text: "pengiriman berapa lama", Label: "sales_kirim"},
		{Text: "halo selamat pagi", Label: "chat_greeting"},
		{Text: "hai kak permisi", Label: "chat_greeting"},
		{Text: "terima kasih banyak", Label: "chat_thanks"},
		{Text: "makasih infonya kak", Label: "chat_thanks"},
		{Text: "sampai jumpa lagi", Label: "chat_bye"},
		{Text: "nomor whatsapp penjual", Label: "chat_contact"},
		{Text: "hubungi customer service", Label: "chat_contact"},
	}
}

func defaultTemplates() map[string]string {
	return map[string]string{
		"sales_harga":   "Harga {{.Title}} {{.Price}}.",
		"sales_beli":    "{{.Title}} bisa langsung dipesan, harganya {{.Price}}.",
		"sales_fitur":   "Fitur {{.Title}}: {{.Features}}.",
		"sales_stok":    "{{.Title}} saat ini tersedia. {{.Badge}}",
		"sales_promo":   "Promo untuk {{.Title}}: {{.Price}}. {{.Badge}}",
		"sales_kirim":   "{{.Title}} bisa dikirim ke seluruh Indonesia.",
		"sales":         "{{.Title}}: {{.Description}}",
		"chat_greeting": "Halo! Ada yang bisa dibantu?",
		"chat_thanks":   "Sama-sama, senang bisa membantu.",
		"chat_bye":      "Sampai jumpa lagi!",
		"chat_identity": "Saya asisten belanja otomatis toko ini.",
		"chat_contact":  "{{.Contact}}",
		"chat":          "Ada yang bisa saya bantu?",
		"default":       "Ini yang paling cocok: {{.Title}}. {{.Description}}",
		"empty":         "Maaf, belum ada yang cocok. Coba kata kunci lain ya.",
	}
}
