package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/seaglass/internal/notedb"
	"github.com/san-kum/seaglass/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serve(cmd *cobra.Command, args []string) error {
	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	path, err := dbPath()
	if err != nil {
		return err
	}
	db, err := notedb.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              settings.GetString("listen"),
		Handler:           server.New(db, log, version),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		log.Info("note api listening", zap.String("addr", srv.Addr), zap.String("db", path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

func listNotes(cmd *cobra.Command, args []string) error {
	log, err := newLogger(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, release, err := openStore(log)
	if err != nil {
		return err
	}
	defer release()
	if store == nil {
		return errors.New("no note store configured; pass --store db or --store remote")
	}

	owner := settings.GetString("owner")
	list, err := store.List(cmd.Context(), owner)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Printf("no notes for %q\n", owner)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tCREATED\tTEXT")
	for _, n := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Category, n.CreatedAt.Format("2006-01-02 15:04"), n.Text)
	}
	return w.Flush()
}
