package main

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"bancho"
)

// cliOptions mirrors SPEC_FULL.md §6's flag table. Built with pflag (GNU-
// style long flags), matching the ambient CLI-flags stack.
type cliOptions struct {
	username           string
	password           string
	server             string
	stream             string
	version            string
	tournament         bool
	tcp                bool
	tcpAddr            string
	disableChatLogging bool
	disableLogging     bool
	configPath         string
}

func parseFlags(args []string) cliOptions {
	fs := pflag.NewFlagSet("banchoclient", pflag.ExitOnError)

	opts := cliOptions{}
	fs.StringVar(&opts.username, "username", "", "account username")
	fs.StringVar(&opts.password, "password", "", "account password")
	fs.StringVar(&opts.server, "server", "ppy.sh", "server domain suffix")
	fs.StringVar(&opts.stream, "stream", "stable40", "release stream")
	fs.StringVar(&opts.version, "version", "", "client version string")
	fs.BoolVar(&opts.tournament, "tournament", false, "run as a tournament client")
	fs.BoolVar(&opts.tcp, "tcp", false, "use the persistent TCP transport instead of HTTP")
	fs.StringVar(&opts.tcpAddr, "tcp-addr", "", "host:port for the TCP transport")
	fs.BoolVar(&opts.disableChatLogging, "disable-chat-logging", false, "omit chat message bodies from logs")
	fs.BoolVar(&opts.disableLogging, "disable-logging", false, "disable logging entirely")
	fs.StringVar(&opts.configPath, "config", "", "path to a saved config file (fills in flags left at their defaults)")

	_ = fs.Parse(args)
	return opts
}

// applyConfig fills in any flag left at its zero value from a saved config,
// so --config can supply what the command line omits without silently
// overriding flags the user did pass.
func (o cliOptions) applyConfig(cfg bancho.Config) cliOptions {
	if o.username == "" {
		o.username = cfg.Username
	}
	if o.server == "ppy.sh" && cfg.Server != "" {
		o.server = cfg.Server
	}
	if o.stream == "stable40" && cfg.Stream != "" {
		o.stream = cfg.Stream
	}
	if o.version == "" {
		o.version = cfg.Version
	}
	if !o.tournament {
		o.tournament = cfg.Tournament
	}
	if !o.tcp {
		o.tcp = cfg.UseTCP
	}
	if o.tcpAddr == "" {
		o.tcpAddr = cfg.TCPAddr
	}
	if !o.disableChatLogging {
		o.disableChatLogging = cfg.DisableChatLogging
	}
	if !o.disableLogging {
		o.disableLogging = cfg.DisableLogging
	}
	return o
}

// toGameOptions resolves a parsed cliOptions into bancho.GameOptions.
func (o cliOptions) toGameOptions() bancho.GameOptions {
	host, portStr, _ := net.SplitHostPort(o.tcpAddr)
	port, _ := strconv.Atoi(portStr)

	return bancho.GameOptions{
		Username:           o.username,
		Password:           o.password,
		Server:             o.server,
		Stream:             o.stream,
		Version:            o.version,
		Tournament:         o.tournament,
		UseTCP:             o.tcp,
		TCPAddr:            host,
		TCPPort:            port,
		DisableChatLogging: o.disableChatLogging,
		MinIdle:            time.Second,
		MaxIdle:            4 * time.Second,
	}
}
