package config

type config struct {
	Exchange ExchangeConfig
	Database DatabaseConfig
	Symbols  []string

	// Path to the YAML file holding run/sweep parameters
	RunFile string

	// Where the JSON result bundle is written
	ReportPath string
}

type ExchangeConfig struct {
	APIKey    string
	SecretKey string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}
