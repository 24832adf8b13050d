package config

type ServerConfig struct {
	Port int
}

func GetServerConfig() (*ServerConfig, error) {
	port, err := intFromEnv("WRAPPER_PORT", 8288)
	if err != nil {
		return nil, err
	}
	return &ServerConfig{Port: port}, nil
}
