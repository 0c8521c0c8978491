package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName          string
		Env              string // DEV (default), TEST, QA, PROD
		Debug            bool
		TestMode         bool
		Build            string
		SecretKey        string
		WorkDir          string
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		Server   ServerConfig
		Planner  PlannerConfig
		Database DatabaseConfig
		Calendar CalendarConfig

		SendgridAPIKey string
		RollbarToken   string
	}

	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	// PlannerConfig points at the planning suite's REST backend.
	// An empty APIURL means the self-hosted database planner is used instead.
	PlannerConfig struct {
		APIURL  string
		Timeout time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	CalendarConfig struct {
		DefaultView string // month | week | agenda
		AgendaDays  int
		WeekStart   time.Weekday
		Timezone    string
		RefreshCron string   // cron spec for periodic window refresh; empty disables it
		FeedURLs    []string // subscribed ICS feeds (holidays, district events)
	}
)

func (dbc DatabaseConfig) Address() string {
	return dbc.Host + ":" + dbc.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Kalenda")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "w3l0-ved)anq$+81=kx&homr5(p!d)#*f9(#tg2j^$pegm7qrw")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")

	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugAddr", ":8001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)

	conf.SetDefault("planner.apiURL", "")
	conf.SetDefault("planner.timeout", 10*time.Second)

	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "kalenda")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.user", "kalenda")
	conf.SetDefault("database.password", "kalenda")
	conf.SetDefault("database.disableTLS", true)

	conf.SetDefault("calendar.defaultView", "month")
	conf.SetDefault("calendar.agendaDays", 7)
	conf.SetDefault("calendar.weekStart", int(time.Monday))
	conf.SetDefault("calendar.timezone", "UTC")
	conf.SetDefault("calendar.refreshCron", "")
	conf.SetDefault("calendar.feedURLs", []string{})

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:          conf.GetString("appName"),
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Build:            conf.GetString("build"),
		SecretKey:        conf.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{Address: conf.GetString("defaultFromEmail")},
		Server: ServerConfig{
			Host:                      conf.GetString("server.host"),
			Addr:                      conf.GetString("server.addr"),
			DebugAddr:                 conf.GetString("server.debugAddr"),
			ShutdownTimeout:           conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Planner: PlannerConfig{
			APIURL:  conf.GetString("planner.apiURL"),
			Timeout: conf.GetDuration("planner.timeout"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
		Calendar: CalendarConfig{
			DefaultView: conf.GetString("calendar.defaultView"),
			AgendaDays:  conf.GetInt("calendar.agendaDays"),
			WeekStart:   time.Weekday(conf.GetInt("calendar.weekStart")),
			Timezone:    conf.GetString("calendar.timezone"),
			RefreshCron: conf.GetString("calendar.refreshCron"),
			FeedURLs:    conf.GetStringSlice("calendar.feedURLs"),
		},
		SendgridAPIKey: conf.GetString("sendgridAPIKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
	}
}
