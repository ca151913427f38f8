package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug     bool
	TestMode  bool
	Env       string // DEV (local; default), TEST, QA, PROD
	Build     string
	AppName   string
	SecretKey string
	WorkDir   string

	FrontendBaseURL string
	DefaultFromName string
	DefaultFromAddr string
	SendgridApiKey  string
	RollbarToken    string

	Server struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Database struct {
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

	SMS struct {
		Username string
		ApiKey   string
		Sender   string
		BaseURL  string
	}

	// Ledger & scoring engine defaults.
	Engine struct {
		Currency         string
		PassMark         float64 // percentage
		LateFeeDailyRate string  // decimal string, e.g. "10"
		GradingScale     string  // "kcse" | "simple"
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// DBAddress returns the host:port pair of the database server.
func (c *Config) DBAddress() string {
	return fmt.Sprintf("%s:%s", c.Database.Host, c.Database.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Shule")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "h2x$mba7=dz&uo(h!q5-wer)enb$+57c2(#yg4h^$cegm2emy")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Shule")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("serverHost", "0.0.0.0:8000")
	v.SetDefault("serverDebugHost", "0.0.0.0:4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "shule")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbUser", "")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)
	v.SetDefault("smsUsername", "")
	v.SetDefault("smsApiKey", "")
	v.SetDefault("smsSender", "")
	v.SetDefault("smsBaseURL", "https://api.africastalking.com")
	v.SetDefault("currency", "KES")
	v.SetDefault("passMark", 50.0)
	v.SetDefault("lateFeeDailyRate", "0")
	v.SetDefault("gradingScale", "kcse")

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

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
	v.AutomaticEnv()

	conf := &Config{
		Debug:           v.GetBool("debug"),
		TestMode:        env == "TEST",
		Env:             env,
		Build:           v.GetString("build"),
		AppName:         v.GetString("appName"),
		SecretKey:       v.GetString("secretKey"),
		WorkDir:         wd,
		FrontendBaseURL: v.GetString("frontendBaseURL"),
		DefaultFromName: v.GetString("defaultFromName"),
		DefaultFromAddr: v.GetString("defaultFromAddr"),
		SendgridApiKey:  v.GetString("sendgridApiKey"),
		RollbarToken:    v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.DebugHost = v.GetString("serverDebugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Database.Engine = v.GetString("dbEngine")
	conf.Database.Name = v.GetString("dbName")
	conf.Database.Host = v.GetString("dbHost")
	conf.Database.Port = v.GetString("dbPort")
	conf.Database.User = v.GetString("dbUser")
	conf.Database.Password = v.GetString("dbPassword")
	conf.Database.AdminUser = v.GetString("dbAdminUser")
	conf.Database.AdminPassword = v.GetString("dbAdminPassword")
	conf.Database.DisableTLS = v.GetBool("dbDisableTLS")
	conf.SMS.Username = v.GetString("smsUsername")
	conf.SMS.ApiKey = v.GetString("smsApiKey")
	conf.SMS.Sender = v.GetString("smsSender")
	conf.SMS.BaseURL = v.GetString("smsBaseURL")
	conf.Engine.Currency = v.GetString("currency")
	conf.Engine.PassMark = v.GetFloat64("passMark")
	conf.Engine.LateFeeDailyRate = v.GetString("lateFeeDailyRate")
	conf.Engine.GradingScale = v.GetString("gradingScale")
	return conf
}
