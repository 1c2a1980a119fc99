package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/yungbote/leadops-backend/internal/app"
	domainagg "github.com/yungbote/leadops-backend/internal/domain/aggregates"
	"github.com/yungbote/leadops-backend/internal/services"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func main() {
	var leads idList
	var dryRun bool
	var strict bool
	var requestedBy string
	flag.Var(&leads, "lead", "lead id to purge (repeatable)")
	flag.BoolVar(&dryRun, "dry-run", false, "count what would be deleted without deleting")
	flag.BoolVar(&strict, "strict", false, "fail fast when the lead does not exist")
	flag.StringVar(&requestedBy, "requested-by", "lead_purge_cli", "operator recorded in the deletion log")
	flag.Parse()

	ids := make([]uuid.UUID, 0, len(leads))
	for _, raw := range leads {
		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			fmt.Printf("invalid lead id %q\n", raw)
			os.Exit(2)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		fmt.Println("no -lead values provided")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	aborted := 0
	for _, id := range ids {
		res, err := application.Services.Lead.DeleteLead(ctx, services.DeleteLeadInput{
			LeadID:          id,
			RequestedBy:     requestedBy,
			RequireExisting: &strict,
			DryRun:          dryRun,
		})
		prefix := ""
		if dryRun {
			prefix = "[dry-run] "
		}
		fmt.Printf("%slead_id=%s verdict=%s status=%s\n", prefix, id, res.Verdict, res.Status)
		for _, line := range res.Audit {
			fmt.Printf("  %s\n", line)
		}
		switch {
		case err == nil:
		case domainagg.IsCode(err, domainagg.CodeNotFound):
			fmt.Printf("  lead not found\n")
		default:
			aborted++
			fmt.Printf("  error: %v\n", err)
		}
		if ctx.Err() != nil {
			fmt.Println("interrupted; remaining leads skipped")
			break
		}
	}

	fmt.Printf("done; leads=%d aborted=%d\n", len(ids), aborted)
	if aborted > 0 {
		application.Close()
		os.Exit(1)
	}
}
