package config

// Canonical interaction strength factor weights. The seven weights sum to 1.
const (
	DefaultProfessionalWeight = 0.25
	DefaultSkillWeight        = 0.20
	DefaultSocialWeight       = 0.15
	DefaultContentWeight      = 0.15
	DefaultGeographicWeight   = 0.10
	DefaultTemporalWeight     = 0.10
	DefaultSerendipityWeight  = 0.05
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/sih/data/db/sih.db"
	}
	if cfg.Storage.BleveIndexPath == "" {
		cfg.Storage.BleveIndexPath = "/usr/local/var/sih/data/indices/bleve"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/sih/data/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "posts"
	}
	if cfg.Index.StalenessDays == 0 {
		cfg.Index.StalenessDays = 7
	}
	if cfg.Index.MaxPosts == 0 {
		cfg.Index.MaxPosts = 20000
	}
	if cfg.Index.SearchK == 0 {
		cfg.Index.SearchK = 100
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = 20
	}
	if cfg.Recommend.MaxLimit == 0 {
		cfg.Recommend.MaxLimit = 100
	}
	if cfg.Interaction.ProfessionalWeight == 0 {
		cfg.Interaction.ProfessionalWeight = DefaultProfessionalWeight
	}
	if cfg.Interaction.SkillWeight == 0 {
		cfg.Interaction.SkillWeight = DefaultSkillWeight
	}
	if cfg.Interaction.SocialWeight == 0 {
		cfg.Interaction.SocialWeight = DefaultSocialWeight
	}
	if cfg.Interaction.ContentWeight == 0 {
		cfg.Interaction.ContentWeight = DefaultContentWeight
	}
	if cfg.Interaction.GeographicWeight == 0 {
		cfg.Interaction.GeographicWeight = DefaultGeographicWeight
	}
	if cfg.Interaction.TemporalWeight == 0 {
		cfg.Interaction.TemporalWeight = DefaultTemporalWeight
	}
	if cfg.Interaction.SerendipityWeight == 0 {
		cfg.Interaction.SerendipityWeight = DefaultSerendipityWeight
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	if cfg.Search.TopKCandidates == 0 {
		cfg.Search.TopKCandidates = 100
	}
	if cfg.Search.DefaultKeywordWeight == 0 && cfg.Search.DefaultSemanticWeight == 0 {
		cfg.Search.DefaultKeywordWeight = 0.5
		cfg.Search.DefaultSemanticWeight = 0.5
	}
}
