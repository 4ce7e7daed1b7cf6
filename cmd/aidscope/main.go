// Command aidscope explores aid programs by partner, sector and policy marker,
// interactively in a terminal dashboard or through scriptable subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	_ "github.com/vanderheijden86/aidscope/internal/ttyguard"
	"github.com/vanderheijden86/aidscope/pkg/debug"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	debug.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}
