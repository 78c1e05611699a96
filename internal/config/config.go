package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	OutputDir       string
	RawMailDir      string
	InstitutionsDir string
	Institution     string
	RulesPath       string

	EmailPattern     string
	EmailDomain      string
	DefaultHonorific string

	DirectoryTimeoutMs    int
	DirectoryRateLimitRPS int
	DirectoryToken        string
	DirectoryUserAgent    string
	DirectoryMaxRetries   int

	MatchScanFallback bool
	MatchScanMinScore float64

	FilterDropPlaceholders bool
	FilterRequireEmail     bool
	FilterRequireCourse    bool
	FilterSortByCourse     bool

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IMAPHost          string
	IMAPPort          int
	IMAPSecure        bool
	IMAPUser          string
	IMAPPassword      string
	IMAPDraftsMailbox string

	SenderName       string
	SenderRole       string
	SenderAddress    string
	MailSubject      string
	MailTemplatePath string
	DraftsProvider   string

	DraftsInboxDir        string
	DraftsPollIntervalSec int

	SFTPHost       string
	SFTPPort       int
	SFTPUser       string
	SFTPPassword   string
	SFTPRemoteDir  string
	SFTPKnownHosts string
	SFTPInsecure   bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. envFiles are loaded first
// when present; a missing ".env" in the working directory is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range envFiles {
			if strings.TrimSpace(f) == "" {
				continue
			}
			if err := godotenv.Load(f); err != nil {
				return Config{}, fmt.Errorf("load env file %s: %w", f, err)
			}
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		OutputDir:       getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RawMailDir:      getEnv("RAW_MAIL_DIR", filepath.Join(cwd, "data", "drafts")),
		InstitutionsDir: getEnv("INSTITUTIONS_DIR", filepath.Join(cwd, "institutions")),
		Institution:     getEnv("INSTITUTION", ""),
		RulesPath:       getEnv("RULES_PATH", ""),

		EmailPattern:     getEnv("EMAIL_PATTERN", ""),
		EmailDomain:      getEnv("EMAIL_DOMAIN", ""),
		DefaultHonorific: getEnv("DEFAULT_HONORIFIC", "Professor"),

		DirectoryTimeoutMs:    getEnvInt("DIRECTORY_TIMEOUT_MS", 30000),
		DirectoryRateLimitRPS: getEnvInt("DIRECTORY_RATE_LIMIT_RPS", 2),
		DirectoryToken:        getEnv("DIRECTORY_TOKEN", ""),
		DirectoryUserAgent:    getEnv("DIRECTORY_USER_AGENT", "Mozilla/5.0 (compatible; outreach/1.0)"),
		DirectoryMaxRetries:   getEnvInt("DIRECTORY_MAX_RETRIES", 5),

		MatchScanFallback: getEnvBool("MATCH_SCAN_FALLBACK", false),
		MatchScanMinScore: getEnvFloat("MATCH_SCAN_MIN_SCORE", 1.0),

		FilterDropPlaceholders: getEnvBool("FILTER_DROP_PLACEHOLDERS", true),
		FilterRequireEmail:     getEnvBool("FILTER_REQUIRE_EMAIL", true),
		FilterRequireCourse:    getEnvBool("FILTER_REQUIRE_COURSE", true),
		FilterSortByCourse:     getEnvBool("FILTER_SORT_BY_COURSE", false),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IMAPHost:          getEnv("IMAP_HOST", ""),
		IMAPPort:          getEnvInt("IMAP_PORT", 993),
		IMAPSecure:        getEnvBool("IMAP_SECURE", true),
		IMAPUser:          getEnv("IMAP_USER", ""),
		IMAPPassword:      getEnv("IMAP_PASSWORD", ""),
		IMAPDraftsMailbox: getEnv("IMAP_DRAFTS_MAILBOX", "Drafts"),

		SenderName:       getEnv("SENDER_NAME", ""),
		SenderRole:       getEnv("SENDER_ROLE", ""),
		SenderAddress:    getEnv("SENDER_ADDRESS", ""),
		MailSubject:      getEnv("MAIL_SUBJECT", "Quick question about your class"),
		MailTemplatePath: getEnv("MAIL_TEMPLATE_PATH", ""),
		DraftsProvider:   getEnv("DRAFTS_PROVIDER", "file"),

		DraftsInboxDir:        getEnv("DRAFTS_INBOX_DIR", filepath.Join(cwd, "data", "inbox")),
		DraftsPollIntervalSec: getEnvInt("DRAFTS_POLL_INTERVAL_SEC", 60),

		SFTPHost:       getEnv("SFTP_HOST", ""),
		SFTPPort:       getEnvInt("SFTP_PORT", 22),
		SFTPUser:       getEnv("SFTP_USER", ""),
		SFTPPassword:   getEnv("SFTP_PASS", ""),
		SFTPRemoteDir:  getEnv("SFTP_REMOTE_DIR", "/"),
		SFTPKnownHosts: getEnv("SFTP_KNOWN_HOSTS", ""),
		SFTPInsecure:   getEnvBool("SFTP_INSECURE_IGNORE_HOST_KEY", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
