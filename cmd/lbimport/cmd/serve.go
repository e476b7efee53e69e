package cmd

import (
	"fmt"

	"loyalty-statement-import/cmd/lbimport/config"
	"loyalty-statement-import/internal/api"
	"loyalty-statement-import/internal/backup"
	"loyalty-statement-import/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the serve command
var (
	serveListen     string
	serveBackupFile string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the import API server",
	Long: `Serve exposes the parse and resolve pipeline over HTTP:

  GET  /api/health   liveness
  POST /api/parse    parse an uploaded PDF or posted statement text
  POST /api/resolve  apply conflict decisions to a parse result
  GET  /api/backup   snapshot status (requires --backup)

Examples:
  lbimport serve --listen :8080
  lbimport serve --listen 127.0.0.1:9090 --backup backups.db`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveBackupFile, "backup", "", "backup database path (optional)")

	viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := logger.New(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return err
	}

	var snapshots *backup.Store
	if serveBackupFile != "" {
		snapshots, err = backup.Open(serveBackupFile, log)
		if err != nil {
			return err
		}
		defer snapshots.Close()
	}

	app := fiber.New(fiber.Config{
		AppName:   "lbimport " + version,
		BodyLimit: 32 << 20,
	})
	api.New(log, snapshots).Register(app)

	log.WithField("addr", serveListen).Info("starting import API server")
	if err := app.Listen(serveListen); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
