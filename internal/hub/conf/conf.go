package conf

import (
	"github.com/synchub/synchub/internal/hub/registry"
	"github.com/synchub/synchub/internal/hub/scheduler"
	"github.com/synchub/synchub/internal/pkg/mailer"
	"github.com/synchub/synchub/pkg/lock"
	"github.com/synchub/synchub/pkg/log"
	"github.com/synchub/synchub/pkg/metrics"
	"github.com/synchub/synchub/pkg/orm"
)

// AppConfig is the whole hub configuration, loaded from conf.d/config.toml.
type AppConfig struct {
	App       App            `toml:"app" json:"app"`
	Log       log.Conf       `toml:"log" json:"log"`
	Database  orm.Database   `toml:"database" json:"database"`
	Redis     lock.Redis     `toml:"redis" json:"redis"`
	Registry  Registry       `toml:"registry" json:"registry"`
	Mail      mailer.Conf    `toml:"mail" json:"mail"`
	Metrics   metrics.Conf   `toml:"metrics" json:"metrics"`
	Scheduler scheduler.Conf `toml:"scheduler" json:"scheduler"`
}

// App holds the hub's own identity: the public base URL short links and
// consent callbacks live under, and the key confirmation tokens are signed
// with.
type App struct {
	BaseURL string `toml:"base_url" json:"baseUrl"`
	Secret  string `toml:"secret" json:"secret"`
}

// Registry is the remote registry's endpoints.
type Registry struct {
	APIBaseURL string `toml:"api_base_url" json:"apiBaseUrl"`
	SiteURL    string `toml:"site_url" json:"siteUrl"`
	TokenURL   string `toml:"token_url" json:"tokenUrl"`
}

// Config converts to the immutable form the registry clients take.
func (r Registry) Config() registry.Config {
	return registry.Config{
		APIBaseURL: r.APIBaseURL,
		SiteURL:    r.SiteURL,
		TokenURL:   r.TokenURL,
	}
}
