// api/config/config.go
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server ServerConfiguration
	Neo4j  DatabaseConfiguration
	Redis  RedisConfiguration
	Cache  CacheConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// DatabaseConfiguration stores data for database connection
type DatabaseConfiguration struct {
	URI      string
	Username string
	Password string
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int
	PoolTimeout  time.Duration
}

// CacheConfiguration stores the tuning knobs of the resilient cache stack.
type CacheConfiguration struct {
	JitterRangeSecs        int
	L1MaxCapacity          int
	L1TTLSecs              int
	L2FallbackEnabled      bool
	BloomFilterEnabled     bool
	BloomExpectedElements  uint
	BloomFalsePositiveRate float64
	RoleTTLSecs            int
	PolicyTTLSecs          int
	WarmingEnabled         bool
	WarmTenants            []string
	LoadTimeout            time.Duration
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("neo4j.uri", "bolt://localhost:7687")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.dialTimeout", "2s")
	viper.SetDefault("redis.readTimeout", "500ms")
	viper.SetDefault("redis.writeTimeout", "500ms")
	viper.SetDefault("cache.jitterRangeSecs", 30)
	viper.SetDefault("cache.l1MaxCapacity", 10000)
	viper.SetDefault("cache.l1TTLSecs", 60)
	viper.SetDefault("cache.l2FallbackEnabled", true)
	viper.SetDefault("cache.bloomFilterEnabled", true)
	viper.SetDefault("cache.roleTTLSecs", 300)
	viper.SetDefault("cache.policyTTLSecs", 300)
	viper.SetDefault("cache.warmingEnabled", true)
	viper.SetDefault("cache.warmTenants", []string{})
	viper.SetDefault("cache.loadTimeout", "3s")
	viper.SetDefault("cache.bloomExpectedElements", 100000)
	viper.SetDefault("cache.bloomFalsePositiveRate", 0.01)

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return Validate()
}

// Validate fails fast on cache settings that would break TTL and jitter
// invariants at runtime. Called from InitConfig before anything is wired.
func Validate() error {
	roleTTL := viper.GetInt("cache.roleTTLSecs")
	policyTTL := viper.GetInt("cache.policyTTLSecs")
	l1TTL := viper.GetInt("cache.l1TTLSecs")
	jitter := viper.GetInt("cache.jitterRangeSecs")

	if roleTTL <= 0 || policyTTL <= 0 || l1TTL <= 0 {
		return fmt.Errorf("invalid cache configuration: TTLs must be positive (role=%d policy=%d l1=%d)", roleTTL, policyTTL, l1TTL)
	}
	if jitter < 0 {
		return fmt.Errorf("invalid cache configuration: jitterRangeSecs must not be negative, got %d", jitter)
	}
	// The jittered TTL must stay strictly positive for every entry.
	if jitter >= 2*roleTTL || jitter >= 2*policyTTL {
		return fmt.Errorf("invalid cache configuration: jitterRangeSecs %d too large for TTLs (role=%d policy=%d)", jitter, roleTTL, policyTTL)
	}
	if viper.GetInt("cache.l1MaxCapacity") <= 0 {
		return fmt.Errorf("invalid cache configuration: l1MaxCapacity must be positive")
	}
	fp := viper.GetFloat64("cache.bloomFalsePositiveRate")
	if fp <= 0 || fp >= 1 {
		return fmt.Errorf("invalid cache configuration: bloomFalsePositiveRate must be in (0, 1), got %f", fp)
	}
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}
