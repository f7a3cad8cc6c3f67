package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pet-marketplace/internal/domain/changes"
	"pet-marketplace/internal/domain/pets"
	"pet-marketplace/internal/petstore"
	"pet-marketplace/internal/realtime"
)

func newListCmd(appOf func() *app, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your pets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := appOf().openStore(cmd.Context(), storeOptions{})
			if err != nil {
				return err
			}
			defer store.Dispose()

			return printPets(cmd.OutOrStdout(), store.Pets(), flags.json)
		},
	}
}

type petFlags struct {
	name, species, breed, sex, notes string
	age                              int
	weight                           float64
}

func (f *petFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "pet name")
	fs.StringVar(&f.species, "species", "", "dog, cat, bird, rabbit or other")
	fs.StringVar(&f.breed, "breed", "", "breed")
	fs.StringVar(&f.sex, "sex", "", "male, female or unknown")
	fs.StringVar(&f.notes, "notes", "", "free text")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.Float64Var(&f.weight, "weight", 0, "weight in kg")
}

func newCreateCmd(appOf func() *app, flags *rootFlags) *cobra.Command {
	pf := &petFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new pet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := appOf().openStore(cmd.Context(), storeOptions{})
			if err != nil {
				return err
			}
			defer store.Dispose()

			created, err := store.Create(cmd.Context(), pets.Draft{
				Name:     pf.name,
				Species:  pets.Species(pf.species),
				Breed:    pf.breed,
				Sex:      pets.Sex(pf.sex),
				Age:      pf.age,
				WeightKg: pf.weight,
				Notes:    pf.notes,
			})
			if err != nil {
				return err
			}
			return printPet(cmd.OutOrStdout(), created, flags.json)
		},
	}
	pf.register(cmd)
	return cmd
}

func newUpdateCmd(appOf func() *app, flags *rootFlags) *cobra.Command {
	pf := &petFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the given fields of a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := pf.patch(cmd)
			if patch.IsEmpty() {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			store, err := appOf().openStore(cmd.Context(), storeOptions{})
			if err != nil {
				return err
			}
			defer store.Dispose()

			updated, err := store.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printPet(cmd.OutOrStdout(), updated, flags.json)
		},
	}
	pf.register(cmd)
	return cmd
}

// patch arma un Patch solo con los flags que el usuario pasó.
func (f *petFlags) patch(cmd *cobra.Command) pets.Patch {
	var p pets.Patch
	fs := cmd.Flags()
	if fs.Changed("name") {
		p.Name = &f.name
	}
	if fs.Changed("species") {
		s := pets.Species(f.species)
		p.Species = &s
	}
	if fs.Changed("breed") {
		p.Breed = &f.breed
	}
	if fs.Changed("sex") {
		s := pets.Sex(f.sex)
		p.Sex = &s
	}
	if fs.Changed("notes") {
		p.Notes = &f.notes
	}
	if fs.Changed("age") {
		p.Age = &f.age
	}
	if fs.Changed("weight") {
		p.WeightKg = &f.weight
	}
	return p
}

func newDeleteCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := appOf().openStore(cmd.Context(), storeOptions{})
			if err != nil {
				return err
			}
			defer store.Dispose()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func newUploadCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <id> <file>...",
		Short: "Upload photos and attach them to a pet",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			files := make([]petstore.Upload, 0, len(args)-1)
			for _, path := range args[1:] {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, petstore.Upload{
					Filename:    filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Body:        f,
				})
			}

			last := -1
			store, err := appOf().openStore(cmd.Context(), storeOptions{
				onProgress: func(v int) {
					if v != last {
						last = v
						fmt.Fprintf(out, "progress: %d%%\n", v)
					}
				},
			})
			if err != nil {
				return err
			}
			defer store.Dispose()

			urls, err := store.UploadPhotos(cmd.Context(), args[0], files)
			for _, u := range urls {
				fmt.Fprintf(out, "uploaded %s\n", u)
			}
			return err
		},
	}
}

func newWatchCmd(appOf func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print every change applied to your pets until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithCancelCause(ctx)
			defer cancel(nil)

			pw := &printingSubscriber{out: cmd.OutOrStdout()}
			store, err := appOf().openStore(ctx, storeOptions{
				realtime:     true,
				onFeedClosed: cancel,
				wrap: func(inner petstore.Subscriber) petstore.Subscriber {
					pw.inner = inner
					return pw
				},
			})
			if err != nil {
				return err
			}
			defer store.Dispose()

			pw.printf("watching %d pets\n", len(store.Pets()))
			<-ctx.Done()
			if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
				return cause
			}
			return nil
		},
	}
}

// printingSubscriber reenvía los eventos al store y después los imprime.
type printingSubscriber struct {
	inner petstore.Subscriber
	out   io.Writer
	mu    sync.Mutex
}

func (p *printingSubscriber) Subscribe(ctx context.Context, ownerID string, onEvent func(changes.Event), onClosed func(error)) (realtime.Handle, error) {
	return p.inner.Subscribe(ctx, ownerID, func(ev changes.Event) {
		onEvent(ev)
		if ev.New != nil {
			p.printf("%s %s %s\n", ev.Type, ev.ID(), ev.New.Name)
			return
		}
		p.printf("%s %s\n", ev.Type, ev.ID())
	}, onClosed)
}

func (p *printingSubscriber) Unsubscribe(h realtime.Handle) { p.inner.Unsubscribe(h) }

func (p *printingSubscriber) printf(format string, a ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, a...)
}

func printPets(w io.Writer, ps []pets.Pet, asJSON bool) error {
	if asJSON {
		rows := make([]pets.Row, 0, len(ps))
		for _, p := range ps {
			rows = append(rows, pets.ToRow(p))
		}
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSPECIES\tAGE\tPHOTOS\tVERSION")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", p.ID, p.Name, p.Species, p.Age, len(p.Photos), p.Version)
	}
	return tw.Flush()
}

func printPet(w io.Writer, p pets.Pet, asJSON bool) error {
	if asJSON {
		return writeJSON(w, pets.ToRow(p))
	}
	_, err := fmt.Fprintf(w, "%s %s (%s) v%d\n", p.ID, p.Name, p.Species, p.Version)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
