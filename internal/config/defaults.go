package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.WarehouseDir == "" {
		cfg.Storage.WarehouseDir = "./data_warehouse"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "./data/index.db"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-ada-002"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = "gpt-4o-mini"
	}
	if cfg.Chat.ChunkSize == 0 {
		cfg.Chat.ChunkSize = 1000
	}
	if cfg.Chat.ChunkOverlap == 0 {
		cfg.Chat.ChunkOverlap = 100
	}
	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = 1
	}
	if cfg.Chat.PrimaryLanguage == "" {
		cfg.Chat.PrimaryLanguage = "vi"
	}
	if cfg.Chat.FallbackLanguage == "" {
		cfg.Chat.FallbackLanguage = "en"
	}
	if cfg.Chat.StreamLineDelayMS == 0 {
		cfg.Chat.StreamLineDelayMS = 1000
	}
}
