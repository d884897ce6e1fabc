package config

import "flag"

// Flags holds command-line overrides bound to a flag set.
type Flags struct {
	config    *string
	debug     *bool
	logFile   *string
	workers   *int
	outputDir *string
	cacheDir  *string
	format    *string
	stats     *string
}

// BindFlags registers the config flags on fs. Call before fs.Parse.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:    fs.String("config", "", "Path to config file"),
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		logFile:   fs.String("log", "", "Log file path"),
		workers:   fs.Int("workers", 0, "Worker count (0 = all CPUs)"),
		outputDir: fs.String("out", "", "Image output directory"),
		cacheDir:  fs.String("cache", "", "Point cache directory"),
		format:    fs.String("format", "", "Image format: png or tiff"),
		stats:     fs.String("stats", "", "Write per-frame stats CSV to this file"),
	}
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	if *f.workers > 0 {
		cfg.Sim.Workers = *f.workers
	}
	if *f.outputDir != "" {
		cfg.Bake.OutputDir = *f.outputDir
	}
	if *f.cacheDir != "" {
		cfg.Bake.CacheDir = *f.cacheDir
	}
	if *f.format != "" {
		cfg.Bake.ImageFormat = *f.format
	}
	if *f.stats != "" {
		cfg.Bake.StatsFile = *f.stats
	}
}
