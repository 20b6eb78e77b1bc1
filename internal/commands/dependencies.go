package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/neuroai/neurochat/internal/api"
	"github.com/neuroai/neurochat/internal/audio"
	"github.com/neuroai/neurochat/internal/config"
	"github.com/neuroai/neurochat/internal/logging"
	"github.com/neuroai/neurochat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(opts tui.Options) error
	RunConfig(cfg config.Config, configPath string) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Client is the backend client. Nil builds one from settings.
	Client api.BackendClientInterface

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// LoadConfig returns the settings and the file they are saved to.
	LoadConfig func() (config.Config, string, error)

	// ReadSecret reads a value from the user without echoing it.
	ReadSecret func(prompt string) (string, error)

	// Copy writes to the system clipboard.
	Copy func(string) error

	// Beeper sounds the reveal tone. Nil rings the terminal bell on Stdout.
	Beeper audio.Beeper

	// Interactive reports whether decorated output should be used.
	Interactive func() bool

	flags globalFlags
}

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	url     string
	noSound bool
	verbose bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(opts tui.Options) error {
	return tui.RunChat(opts)
}

func (d *DefaultTUI) RunConfig(cfg config.Config, configPath string) error {
	return tui.RunConfig(cfg, configPath)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:         &DefaultTUI{},
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		LoadConfig:  loadConfigFromDisk,
		ReadSecret:  readSecretFromTerminal,
		Copy:        clipboard.WriteAll,
		Interactive: isStdoutTTY,
	}
}

func loadConfigFromDisk() (config.Config, string, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig(), "", err
	}
	cfg, err := config.LoadConfig()
	return cfg, path, err
}

// readSecretFromTerminal prompts on stderr and reads without echo.
// When stdin is not a terminal the first line is read instead.
func readSecretFromTerminal(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func (d *Dependencies) interactive() bool {
	return d.Interactive != nil && d.Interactive()
}

// session is what a command needs once settings and flags are resolved
type session struct {
	cfg        config.Config
	configPath string
	logger     zerolog.Logger
	client     api.BackendClientInterface
	beeper     audio.Beeper
	logCloser  io.Closer
}

func (s *session) Close() {
	if s.logCloser != nil {
		_ = s.logCloser.Close()
	}
}

// setup loads settings, applies the global flags and builds the client
func (d *Dependencies) setup() (*session, error) {
	cfg, path, err := d.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if d.flags.url != "" {
		cfg.BaseURL = strings.TrimRight(d.flags.url, "/")
	}
	if d.flags.noSound {
		cfg.Sound = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer := logging.New(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Verbose: d.flags.verbose,
	})

	s := &session{
		cfg:        cfg,
		configPath: path,
		logger:     logger,
		beeper:     d.Beeper,
		logCloser:  closer,
	}
	if s.beeper == nil {
		s.beeper = audio.NewBell(d.Stdout, audio.MinGapFor(cfg.RevealDelay.Std()))
	}

	if d.Client != nil {
		s.client = d.Client
		return s, nil
	}

	client, err := api.NewClient(
		api.WithBaseURL(cfg.BaseURL),
		api.WithTimeout(cfg.Timeout.Std()),
		api.WithLogger(logger),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.client = client

	logger.Debug().Str("backend", cfg.BaseURL).Msg("client ready")
	return s, nil
}
