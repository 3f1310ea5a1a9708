package gist

import (
	"fmt"

	"github.com/andrebq/gistbox/gist"
	"github.com/andrebq/gistbox/internal/cmdflags"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	dbPath := "gistbox.db"
	return &cli.Command{
		Name:  "gist",
		Usage: "Manage gists directly against the database, no server required",
		Flags: []cli.Flag{
			cmdflags.Database(&dbPath),
		},
		Subcommands: []*cli.Command{
			createCmd(&dbPath),
			addFileCmd(&dbPath),
			listCmd(&dbPath),
		},
	}
}

func createCmd(dbPath *string) *cli.Command {
	var title, author, file string
	var private bool
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new gist from a file on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Usage:       "Title of the gist",
				Required:    true,
				Destination: &title,
			},
			&cli.StringFlag{
				Name:        "author",
				Usage:       "Author of the gist",
				Destination: &author,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path of the file that holds the gist content",
				Required:    true,
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "private",
				Usage:       "Keep the gist out of the public listing",
				Destination: &private,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := gist.Open(ctx.Context, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			g, err := store.Create(ctx.Context, title, author, file, !private)
			if err != nil {
				return err
			}
			fmt.Printf("gist %v created\n", g.ID)
			return nil
		},
	}
}

func addFileCmd(dbPath *string) *cli.Command {
	var gistID int64
	var file string
	return &cli.Command{
		Name:  "add-file",
		Usage: "Attach another file to an existing gist",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "gist",
				Aliases:     []string{"g"},
				Usage:       "ID of the gist that receives the file",
				Required:    true,
				Destination: &gistID,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "Path of the file to attach",
				Required:    true,
				Destination: &file,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := gist.Open(ctx.Context, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			f, err := store.AddFile(ctx.Context, gistID, file)
			if err != nil {
				return err
			}
			fmt.Printf("file %v attached to gist %v\n", f.ID, gistID)
			return nil
		},
	}
}

func listCmd(dbPath *string) *cli.Command {
	var limit int
	return &cli.Command{
		Name:  "list",
		Usage: "List recent public gists",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "Maximum number of gists to list",
				Value:       10,
				Destination: &limit,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := gist.Open(ctx.Context, *dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			out, err := store.ListRecent(ctx.Context, limit)
			if err != nil {
				return err
			}
			for _, l := range out {
				fmt.Printf("%v\t%v\t%v\n", l.ID, l.Title, l.Author)
				for _, f := range l.Files {
					fmt.Printf("\t%v (%v)\n", f.Path, f.Checksum)
				}
			}
			return nil
		},
	}
}
