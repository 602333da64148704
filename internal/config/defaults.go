package config

// DefaultUserAgent отправляется со всеми запросами к источникам
const DefaultUserAgent = "Mozilla/5.0 (GrantMonitor/1.0)"

// DefaultKeywords: темы, по которым отбираются объявления
var DefaultKeywords = []string{
	`regiony`, `kabiny`, `dotace`, `výzva`, `irop`, `sfpi`,
	`npžp|npzp`, `přírodní\s*zahrady`, `sport`, `nsa`,
}

// DefaultSources: встроенный список источников
var DefaultSources = []SourceConfig{
	{
		Name:         "NSA – aktuality",
		URL:          "https://nsa.gov.cz/aktuality/",
		ItemSelector: "article a", // карточка <article> со ссылкой внутри
		HrefAttr:     "href",
	},
	{
		Name:         "NPŽP – novinky",
		URL:          "https://www.sfzp.cz/novinky/",
		ItemSelector: ".news-list a",
		HrefAttr:     "href",
	},
	{
		Name:         "Královéhradecký kraj – dotace",
		URL:          "https://dotace.khk.cz/",
		ItemSelector: "a", // все ссылки, дальше решает фильтр по ключевым словам
		HrefAttr:     "href",
	},
}

// Default возвращает рабочую конфигурацию без файла
func Default() *Config {
	cfg := &Config{
		HTTP: HttpConfig{
			UserAgent:                 DefaultUserAgent,
			AcceptLanguage:            "cs,en;q=0.8",
			TotalTimeoutMS:            20000,
			MaxIdleConnections:        100,
			MaxIdleConnectionsPerHost: 10,
			IdleConnectionTimeoutS:    90,
		},
		Rod: RodConfig{
			Headless: true,
		},
		Storage: StorageConfig{
			Driver:           "sqlite",
			DSN:              "data/seen.sqlite",
			CommandTimeoutMS: 5000,
		},
		Snapshot: SnapshotConfig{
			Path: "grants.json",
		},
		Poll: PollConfig{
			Concurrency: 1,
		},
		Observability: ObservabilityConfig{
			LogPath:       "logs/grantwatch.log",
			LogLevel:      "info",
			LogMaxSizeMB:  10,
			LogMaxBackups: 5,
			LogMaxAgeDays: 30,
		},
	}

	cfg.Keywords = append([]string(nil), DefaultKeywords...)
	cfg.Sources = append([]SourceConfig(nil), DefaultSources...)
	return cfg
}
