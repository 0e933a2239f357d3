package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/domain"
	"github.com/ecolabdata/ecospheres-dashboard-backend/internal/pkg/constants"
)

// Env selects one of the data.gouv.fr deployments the loader can target.
type Env struct {
	Name         string
	UniverseName string
	TopicSlug    string
	Prefix       string
	dsnKey       string
}

var envs = map[string]Env{
	"prod": {
		Name:         "prod",
		UniverseName: "univers-ecospheres",
		TopicSlug:    "univers-ecospheres",
		Prefix:       "www",
		dsnKey:       "database_url_prod",
	},
	"demo": {
		Name:         "demo",
		UniverseName: "ecospheres",
		TopicSlug:    "univers-ecospheres",
		Prefix:       "demo",
		dsnKey:       "database_url",
	},
}

// Init wires viper to the process environment. Call once from main.
func Init() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("database_url", "DATABASE_URL")
	_ = viper.BindEnv("database_url_prod", "DATABASE_URL_PROD")
	_ = viper.BindEnv(constants.ViperSecretKey, "API_SECRET")
	viper.SetDefault("worker_count", 8)
	viper.SetDefault("listen_addr", ":8080")
}

func Get(name string) (Env, error) {
	env, ok := envs[name]
	if !ok {
		return Env{}, fmt.Errorf("invalid environment %q", name)
	}
	return env, nil
}

// BaseURL is the API root for this environment.
func (e Env) BaseURL() string {
	return fmt.Sprintf("https://%s.data.gouv.fr", e.Prefix)
}

func (e Env) DSN() string {
	return viper.GetString(e.dsnKey)
}

func WorkerCount() int {
	return viper.GetInt("worker_count")
}

func ListenAddr() string {
	return viper.GetString("listen_addr")
}

// ThemeLabels maps bouquet tags to display themes, in match priority order.
func ThemeLabels() []domain.Theme {
	return []domain.Theme{
		{Tag: "ecospheres-theme-changement-climatique", Label: "Changement climatique"},
		{Tag: "ecospheres-theme-eau-biodiversite", Label: "Eau et biodiversité"},
		{Tag: "ecospheres-theme-infrastructures-transports", Label: "Infrastructures et transports"},
		{Tag: "ecospheres-theme-energie", Label: "Énergie"},
		{Tag: "ecospheres-theme-prevention-risques", Label: "Prévention des risques"},
	}
}
