package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vocalstream/translator/internal/asr"
)

// Config is the validated, fully-resolved runtime configuration for a
// translator session: the ASR buffer-trimming policy, the source and
// target languages, and the collaborator URLs, merged from environment
// variables and an optional translator.json tuning file (spec §7.1).
type Config struct {
	Port string

	SrcLang         string
	TargetLanguages []string

	ASREngine  string
	ASRURL     string
	ASRPoolSize int
	WarmupFile string

	VADURL string

	MTEngine    string
	MTURL       string
	MTPoolSize  int
	MTMaxTokens int

	TrimMode    asr.TrimMode
	TrimSeconds float64

	OutputFolder string
	LogToConsole bool
	LogToWeb     bool
}

// tuningFile mirrors the optional JSON overrides file (translator.json),
// following the teacher's cmd/gateway tuning-file pattern.
type tuningFile struct {
	TargetLanguages *[]string `json:"target_languages"`
	TrimMode        *string   `json:"buffer_trimming_mode"`
	TrimSeconds     *float64  `json:"buffer_trimming_seconds"`
	MTMaxTokens     *int      `json:"mt_max_tokens"`
}

// Default returns the built-in defaults, matching online_asr.py's own
// buffer_trimming default of ("segment", 15).
func Default() Config {
	return Config{
		Port:            "8000",
		SrcLang:         "en",
		TargetLanguages: []string{"es"},
		ASREngine:       "whisper",
		ASRURL:          "http://localhost:8001",
		ASRPoolSize:     20,
		MTEngine:        "m2m100",
		MTURL:           "http://localhost:8002",
		MTPoolSize:      20,
		MTMaxTokens:     150,
		TrimMode:        asr.TrimSegment,
		TrimSeconds:     15,
		LogToConsole:    true,
	}
}

// Load builds a Config from environment variables, optionally overridden
// by a translator.json tuning file at path (if it exists), and validates
// the result before returning it.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.applyEnv()

	if path != "" {
		if err := cfg.applyTuningFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envStr("TRANSLATOR_PORT", c.Port)
	c.SrcLang = envStr("SRC_LANG", c.SrcLang)
	if v := os.Getenv("TARGET_LANGUAGES"); v != "" {
		c.TargetLanguages = splitCSV(v)
	}
	c.ASREngine = envStr("ASR_ENGINE", c.ASREngine)
	c.ASRURL = envStr("ASR_SERVER_URL", c.ASRURL)
	c.ASRPoolSize = envInt("ASR_POOL_SIZE", c.ASRPoolSize)
	c.WarmupFile = envStr("ASR_WARMUP_FILE", c.WarmupFile)
	c.VADURL = envStr("VAD_SERVER_URL", c.VADURL)
	c.MTEngine = envStr("MT_ENGINE", c.MTEngine)
	c.MTURL = envStr("MT_SERVER_URL", c.MTURL)
	c.MTPoolSize = envInt("MT_POOL_SIZE", c.MTPoolSize)
	c.MTMaxTokens = envInt("MT_MAX_TOKENS", c.MTMaxTokens)
	c.OutputFolder = envStr("OUTPUT_FOLDER", c.OutputFolder)
	c.LogToWeb = envBool("LOG_TO_WEB", c.LogToWeb)

	if v := os.Getenv("BUFFER_TRIMMING_MODE"); v != "" {
		c.TrimMode = asr.TrimMode(v)
	}
	c.TrimSeconds = envFloat("BUFFER_TRIMMING_SECONDS", c.TrimSeconds)
}

func (c *Config) applyTuningFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read tuning file: %w", err)
	}

	var tf tuningFile
	if err = json.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("parse tuning file %s: %w", path, err)
	}

	if tf.TargetLanguages != nil {
		c.TargetLanguages = *tf.TargetLanguages
	}
	if tf.TrimMode != nil {
		c.TrimMode = asr.TrimMode(*tf.TrimMode)
	}
	if tf.TrimSeconds != nil {
		c.TrimSeconds = *tf.TrimSeconds
	}
	if tf.MTMaxTokens != nil {
		c.MTMaxTokens = *tf.MTMaxTokens
	}
	return nil
}

// Validate fails fast on a malformed configuration (spec §7.1's
// Configuration error kind): an invalid buffer-trimming policy, an empty
// target-language list, or unparseable collaborator URLs.
func (c Config) Validate() error {
	trim := asr.TrimConfig{Mode: c.TrimMode, Seconds: c.TrimSeconds}
	if err := trim.Validate(); err != nil {
		return err
	}
	if len(c.TargetLanguages) == 0 {
		return fmt.Errorf("config: target_languages must be non-empty")
	}
	for _, lang := range c.TargetLanguages {
		if lang == c.SrcLang {
			return fmt.Errorf("config: target language %q cannot equal source language", lang)
		}
	}
	if !asr.ValidServerURL(c.ASRURL) {
		return fmt.Errorf("config: invalid asr_server_url %q", c.ASRURL)
	}
	if !asr.ValidServerURL(c.MTURL) {
		return fmt.Errorf("config: invalid mt_server_url %q", c.MTURL)
	}
	return nil
}

func splitCSV(v string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			if i > start {
				out = append(out, v[start:i])
			}
			start = i + 1
		}
	}
	return out
}
