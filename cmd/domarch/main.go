// Command domarch resolves domain hits into non-overlapping architectures.
//
// Usage:
//
//	domarch resolve hits.txt
//	domarch resolve --input-format domtblout --apply-cath-rules s3://bucket/run/hits.domtblout.zst -o results.txt
//	domarch resolve --config domarch.yaml - < hits.txt
//	domarch version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
