package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/clinauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the remote identity server
//	-f string   local database file
//	-r          prefer the remote backend (local fallback)
//	-m string   host profile: web or mobile
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgsWithBools, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:], []string{"-a", "-f", "-m"}, []string{"-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local database file")
	fs.BoolVar(&cfg.RemotePreferred, "r", cfg.RemotePreferred, "prefer the remote backend")
	fs.StringVar(&cfg.HostProfile, "m", cfg.HostProfile, "host profile (web|mobile)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
