package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/tolicodes/playbuddy-sub001/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "POPUPD_LOG_LEVEL")
	viper.BindEnv("persistence.dir", "POPUPD_STATE_DIR")
	viper.BindEnv("popup.sharedInterval", "POPUPD_SHARED_INTERVAL")
	viper.BindEnv("manualSource.url", "POPUPD_MANUAL_SOURCE_URL")
	viper.BindEnv("manualSource.refreshInterval", "POPUPD_MANUAL_REFRESH_INTERVAL")
	viper.BindEnv("cache.enabled", "POPUPD_CACHE_ENABLED")
	viper.BindEnv("cache.size", "POPUPD_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "PopupSchedulerDaemon"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
