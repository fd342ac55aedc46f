package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `toml:"version"`
		Title   string `toml:"title"`
	} `toml:"app"`
	Output struct {
		File           string `toml:"file"`
		LogDir         string `toml:"logDir"`
		OutputTerminal bool   `toml:"outputTerminal"`
	} `toml:"output"`
	Map struct {
		Lat     float64 `toml:"lat"`
		Lon     float64 `toml:"lon"`
		WidthNm float64 `toml:"widthNm"`
		WidthPx int     `toml:"widthPx"`
		Zoom    int     `toml:"zoom"`
	} `toml:"map"`
	Source struct {
		Type  string `toml:"type"` // solid | debug | http
		URL   string `toml:"url"`
		Color string `toml:"color"`
		Token string `toml:"token"`
	} `toml:"source"`
	Cache struct {
		Enabled    bool   `toml:"enabled"`
		Directory  string `toml:"directory"`
		MaxAgeDays int    `toml:"maxAgeDays"`
	} `toml:"cache"`
	Overlay struct {
		Geojson     string  `toml:"geojson"`
		Color       string  `toml:"color"`
		StrokeWidth float64 `toml:"strokeWidth"`
		Fill        bool    `toml:"fill"`
	} `toml:"overlay"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Printf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
	}
	// 设置默认值
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "MapCloud StaticMap")
	viper.SetDefault("output.file", "map.png")
	viper.SetDefault("output.outputTerminal", true)
	viper.SetDefault("source.type", "debug")
	viper.SetDefault("source.color", "#ff0000")
	viper.SetDefault("cache.directory", "tile-cache")
	viper.SetDefault("cache.maxAgeDays", 7)
	viper.SetDefault("overlay.color", "#0066ff")
	viper.SetDefault("overlay.strokeWidth", 2.0)

	err = viper.Unmarshal(&conf)
	if err != nil {
		panic("配置文件解析失败")
	}
}
