package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: ./data/sih.db
index:
  staleness_days: 3
  max_posts: 500
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server config: got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "data/sih.db") {
		t.Errorf("database path not expanded: %s", cfg.Storage.DatabasePath)
	}
	if cfg.Index.StalenessDays != 3 || cfg.Index.MaxPosts != 500 {
		t.Errorf("index config: got %d days, %d posts", cfg.Index.StalenessDays, cfg.Index.MaxPosts)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Index.StalenessDays != 7 {
		t.Errorf("default staleness: got %d", cfg.Index.StalenessDays)
	}
	if cfg.Index.MaxPosts != 20000 {
		t.Errorf("default max posts: got %d", cfg.Index.MaxPosts)
	}
	sum := cfg.Interaction.ProfessionalWeight + cfg.Interaction.SkillWeight +
		cfg.Interaction.SocialWeight + cfg.Interaction.ContentWeight +
		cfg.Interaction.GeographicWeight + cfg.Interaction.TemporalWeight +
		cfg.Interaction.SerendipityWeight
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("interaction weights should sum to 1, got %v", sum)
	}
}

func TestApplyDefaults_PreservesExplicit(t *testing.T) {
	cfg := &Config{}
	cfg.Index.StalenessDays = 14
	cfg.Interaction.SkillWeight = 0.4
	ApplyDefaults(cfg)

	if cfg.Index.StalenessDays != 14 {
		t.Errorf("explicit staleness overridden: got %d", cfg.Index.StalenessDays)
	}
	if cfg.Interaction.SkillWeight != 0.4 {
		t.Errorf("explicit weight overridden: got %v", cfg.Interaction.SkillWeight)
	}
}
