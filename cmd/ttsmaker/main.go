package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ekisa-team/ttsmaker"
	"github.com/ekisa-team/ttsmaker/config"
	"github.com/ekisa-team/ttsmaker/internal/env"
	"github.com/ekisa-team/ttsmaker/internal/envvar"
	"github.com/ekisa-team/ttsmaker/internal/logger"
	"github.com/ekisa-team/ttsmaker/internal/xfs"
	"github.com/ekisa-team/ttsmaker/watch"
)

func main() {
	var (
		flagConfigPath = flag.String("config", filepath.Join(config.DefaultConfigPath(), "config.yaml"), "Path to config file")
		flagSchemaPath = flag.String("schema", filepath.Join(config.DefaultConfigPath(), "ttsmaker.v1.schema.json"), "Path to schema file")
		flagToken      = flag.String("token", "", "Developer token (overrides config and environment)")

		flagText   = flag.String("text", "", "Text to synthesize")
		flagInput  = flag.String("input", "", "Path to a UTF-8 text file to synthesize")
		flagOut    = flag.String("out", "", "Destination audio path; extension is optional")
		flagVoice  = flag.Int("voice", 0, "Voice ID")
		flagFormat = flag.String("format", "", "Audio format: mp3, ogg, aac or opus")
		flagSpeed  = flag.Float64("speed", 0, "Speech speed, 0.5 to 2.0")
		flagVolume = flag.Float64("volume", -1, "Volume gain, 0 to 10")

		flagListVoices  = flag.Bool("list-voices", false, "List available voices and exit")
		flagLanguage    = flag.String("language", "", "Language filter for -list-voices, e.g. en or zh")
		flagTokenStatus = flag.Bool("token-status", false, "Show token quota status and exit")

		flagWatch    = flag.String("watch", "", "Watch a directory for .txt files and synthesize each one")
		flagWatchOut = flag.String("watch-out", "", "Output directory for -watch mode")
	)
	flag.Parse()

	environment := env.FromEnv()

	slog.SetDefault(
		logger.New(environment,
			logger.WithLogToFile(true),
			logger.WithLogFile("logs/ttsmaker.log"),
		),
	)

	cfg, err := loadConfig(*flagConfigPath, *flagSchemaPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client, err := buildClient(cfg, *flagToken, *flagFormat, *flagSpeed, *flagVolume)
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *flagListVoices:
		err = listVoices(ctx, client, *flagLanguage)
	case *flagTokenStatus:
		err = tokenStatus(ctx, client)
	case *flagWatch != "":
		err = watchDir(ctx, client, cfg, *flagWatch, *flagWatchOut, *flagVoice)
	default:
		err = speak(ctx, client, cfg, *flagText, *flagInput, *flagOut, *flagVoice)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file when present. A missing file is not an
// error; every setting has a flag or a library default.
func loadConfig(path, schemaPath string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Debug("No config file found, using defaults", "path", path)
		return &config.Config{}, nil
	}

	cfg, err := config.LoadAndValidate(path, schemaPath)
	if err != nil {
		return nil, err
	}

	slog.Info("Config loaded successfully", "config", path, "schema", schemaPath)
	return cfg, nil
}

// buildClient assembles a client from flag, environment and config values, in
// that order of precedence.
func buildClient(cfg *config.Config, token, format string, speed, volume float64) (*ttsmaker.Client, error) {
	var opts []ttsmaker.Option

	if token == "" {
		token = os.Getenv(envvar.TTSMakerToken)
	}
	if token == "" {
		token = cfg.Token
	}
	if token != "" {
		opts = append(opts, ttsmaker.WithToken(token))
	}

	baseURL := os.Getenv(envvar.TTSMakerBaseURL)
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	if baseURL != "" {
		opts = append(opts, ttsmaker.WithBaseURL(baseURL))
	}

	if format == "" {
		format = cfg.Defaults.Format
	}
	if format != "" {
		opts = append(opts, ttsmaker.WithDefaultFormat(format))
	}

	if speed == 0 {
		speed = cfg.Defaults.Speed
	}
	if speed != 0 {
		opts = append(opts, ttsmaker.WithDefaultSpeed(speed))
	}

	if volume < 0 {
		volume = cfg.Defaults.Volume
	}
	if volume > 0 {
		opts = append(opts, ttsmaker.WithDefaultVolume(volume))
	}

	if cfg.Defaults.ParagraphPauseMS > 0 {
		opts = append(opts, ttsmaker.WithDefaultParagraphPause(cfg.Defaults.ParagraphPauseMS))
	}

	return ttsmaker.NewClient(opts...)
}

// speak synthesizes one text and saves the audio.
func speak(ctx context.Context, client *ttsmaker.Client, cfg *config.Config, text, input, out string, voiceID int) error {
	if text == "" && input == "" {
		return errors.New("nothing to synthesize: pass -text or -input")
	}

	if text == "" {
		data, err := os.ReadFile(xfs.ExpandTilde(input))
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	if voiceID == 0 {
		voiceID = cfg.Defaults.VoiceID
	}

	if out == "" {
		if input != "" {
			base := filepath.Base(input)
			out = strings.TrimSuffix(base, filepath.Ext(base))
		} else {
			out = "output"
		}
	}
	out = xfs.ExpandTilde(out)

	if dir := xfs.ExpandTilde(cfg.Output.Dir); dir != "" && !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := xfs.EnsureDir(dir); err != nil {
			return err
		}
	}

	start := time.Now()
	order, err := client.CreateTTSOrder(ctx, text, voiceID)
	if err != nil {
		return err
	}

	if err := order.SaveAudio(ctx, out); err != nil {
		return err
	}

	slog.Info("Audio saved",
		"dest", out,
		"format", order.Format(),
		"characters", order.OrderCharacters(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// listVoices prints the voice catalog to stdout.
func listVoices(ctx context.Context, client *ttsmaker.Client, language string) error {
	list, err := client.GetVoiceList(ctx, language)
	if err != nil {
		return err
	}

	if len(list.Languages) > 0 {
		fmt.Printf("Languages: %s\n\n", strings.Join(list.Languages, ", "))
	}

	for _, v := range list.Voices {
		gender := "female"
		if v.Gender == 1 {
			gender = "male"
		}
		fmt.Printf("%6d  %-24s %-6s %-7s limit=%d\n", v.ID, v.Name, v.Language, gender, v.TextCharactersLimit)
	}

	slog.Info("Voice list fetched", "voices", len(list.Voices), "language", language)
	return nil
}

// tokenStatus prints quota information for the configured token.
func tokenStatus(ctx context.Context, client *ttsmaker.Client) error {
	status, err := client.GetTokenStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Token:     %s\n", status.Token)
	fmt.Printf("Quota:     %d characters\n", status.MaxCharacters)
	fmt.Printf("Used:      %d characters\n", status.UsedCharacters)
	fmt.Printf("Remaining: %d characters\n", status.RemainingCharacters)
	if reset := status.NextReset(); !reset.IsZero() {
		fmt.Printf("Resets:    %s\n", reset.Format(time.RFC3339))
	}

	return nil
}

// orderSynthesizer adapts the client to the watch.Synthesizer interface.
type orderSynthesizer struct {
	client  *ttsmaker.Client
	voiceID int
}

func (s *orderSynthesizer) Synthesize(ctx context.Context, text, dest string) error {
	order, err := s.client.CreateTTSOrder(ctx, text, s.voiceID)
	if err != nil {
		return err
	}
	return order.SaveAudio(ctx, dest)
}

// watchDir runs watch mode until interrupted.
func watchDir(ctx context.Context, client *ttsmaker.Client, cfg *config.Config, dir, outDir string, voiceID int) error {
	if voiceID == 0 {
		voiceID = cfg.Defaults.VoiceID
	}
	if voiceID == 0 {
		return errors.New("watch mode needs a voice: pass -voice or set defaults.voice_id")
	}

	if outDir == "" {
		outDir = cfg.Watch.OutDir
	}
	if outDir == "" {
		outDir = dir
	}

	var opts []watch.Option
	if cfg.Watch.DebounceMS > 0 {
		opts = append(opts, watch.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond))
	}

	watcher, err := watch.New(xfs.ExpandTilde(dir), xfs.ExpandTilde(outDir), &orderSynthesizer{client: client, voiceID: voiceID}, opts...)
	if err != nil {
		return err
	}

	err = watcher.Run(ctx)
	slog.Info("Watch mode stopped", "processed", watcher.ProcessedCount(), "failed", watcher.FailedCount())
	return err
}
