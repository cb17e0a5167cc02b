package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tw5keep/internal/storage/wikistore"
)

// RestoreResult reports a restore.
type RestoreResult struct {
	Restored string `json:"restored" yaml:"restored"`
	WikiFile string `json:"wiki_file" yaml:"wiki_file"`
	// Previous is the backup of the document taken before the restore.
	Previous string `json:"previous,omitempty" yaml:"previous,omitempty"`
}

// BackupsCommand returns the backups subcommand group. It works on the
// local backup directory, not through the server.
func BackupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "List or restore wiki backups",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List backups, oldest first",
				Flags: []cli.Flag{
					backupDirFlag(),
					&cli.BoolFlag{
						Name:    "wide",
						Aliases: []string{"w"},
						Usage:   "Show path and content fingerprint",
					},
				},
				Action: backupsList,
			},
			{
				Name:      "restore",
				Usage:     "Make backup NAME the current document",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					backupDirFlag(),
					&cli.StringFlag{
						Name:     "wiki-file",
						Usage:    "Path of the wiki document to overwrite",
						EnvVars:  []string{"TW5KEEP_WIKI__FILE"},
						Required: true,
					},
				},
				Action: backupsRestore,
			},
		},
	}
}

func backupDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "backup-dir",
		Aliases:  []string{"d"},
		Usage:    "Backup directory",
		EnvVars:  []string{"TW5KEEP_WIKI__BACKUP_DIR"},
		Required: true,
	}
}

func backupsList(c *cli.Context) error {
	wide := c.Bool("wide")

	snapshots, err := wikistore.ListSnapshots(c.Context, c.String("backup-dir"))
	if err != nil {
		return err
	}

	if wide {
		for i := range snapshots {
			fp, err := wikistore.FingerprintFile(snapshots[i].Path)
			if err != nil {
				return fmt.Errorf("fingerprint %s: %w", snapshots[i].Name, err)
			}
			snapshots[i].Fingerprint = fp
		}
	}

	if snapshots == nil {
		snapshots = []wikistore.SnapshotInfo{}
	}
	return render(c, snapshots, wide)
}

func backupsRestore(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("restore requires exactly one NAME argument")
	}
	name := c.Args().First()

	store, err := wikistore.New(wikistore.Config{
		WikiFile:  c.String("wiki-file"),
		BackupDir: c.String("backup-dir"),
	})
	if err != nil {
		return err
	}

	previous, err := store.Restore(c.Context, name)
	if err != nil {
		return err
	}

	result := &RestoreResult{Restored: name, WikiFile: store.WikiFile()}
	if previous != nil {
		result.Previous = previous.Name
	}
	return render(c, result, false)
}
