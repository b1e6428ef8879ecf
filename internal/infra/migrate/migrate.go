package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/Adwaitfound/tlp-provisioner/pkg/env"
)

type MigrationFile struct {
	Filename  string
	Filepath  string
	Timestamp string
	SQL       string
}

// Runner applies the tenant schema to a freshly created database project
// by submitting all migrations as one script to the project's
// SQL-execution endpoint.
type Runner struct {
	dir    string
	client http.Client
}

var _ interfaces.MigrationRunner = (*Runner)(nil)

func NewRunner() *Runner {
	return &Runner{
		dir:    env.GetEnv("MIGRATIONS_DIR", "migrations"),
		client: http.Client{Timeout: 120 * time.Second},
	}
}

// LoadMigrations lists *.sql files in dir sorted by filename, migrations
// are named so that lexical order equals execution order. A missing
// directory yields an empty set, not an error.
func LoadMigrations(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("migrations directory not found", "dir", dir)
			return nil, nil
		}
		return nil, err
	}

	var migrations []MigrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		sql, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("can't read migration %v: %w", path, err)
		}
		timestamp, _, _ := strings.Cut(entry.Name(), "_")
		migrations = append(migrations, MigrationFile{
			Filename:  entry.Name(),
			Filepath:  path,
			Timestamp: timestamp,
			SQL:       string(sql),
		})
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Filename < migrations[j].Filename
	})
	return migrations, nil
}

// Run concatenates every migration body into one script and submits it in
// a single request. There is no per-file transactionality, a partial
// failure leaves the schema partially applied, acceptable because the
// project is freshly created and disposable on provisioning failure.
func (r *Runner) Run(ctx context.Context, projectURL, serviceRoleKey string) error {
	migrations, err := LoadMigrations(r.dir)
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		slog.Info("no migrations found, skipping", "dir", r.dir)
		return nil
	}
	slog.Info("running migrations", "count", len(migrations))

	scripts := make([]string, 0, len(migrations))
	for _, m := range migrations {
		scripts = append(scripts, m.SQL)
	}
	body, err := json.Marshal(map[string]string{"sql": strings.Join(scripts, "\n\n")})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, projectURL+"/rest/v1/rpc/exec_sql", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", serviceRoleKey)
	req.Header.Set("Authorization", "Bearer "+serviceRoleKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.client.Do(req)
	if err != nil {
		return errs.MigrationError{Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return errs.MigrationError{Detail: fmt.Sprintf("%d %s", resp.StatusCode, raw)}
	}
	slog.Info("migrations applied")
	return nil
}
