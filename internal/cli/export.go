package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"gopkg.in/yaml.v3"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// exportDoc is the board as written by export. It never carries
// credentials or tokens.
type exportDoc struct {
	ExportedAt time.Time    `json:"exportedAt" yaml:"exported_at" toml:"exported_at"`
	User       *exportUser  `json:"user,omitempty" yaml:"user,omitempty" toml:"user,omitempty"`
	Tags       []exportTag  `json:"tags" yaml:"tags" toml:"tags"`
	Tasks      []exportTask `json:"tasks" yaml:"tasks" toml:"tasks"`
}

type exportUser struct {
	ID       string `json:"id" yaml:"id" toml:"id"`
	Email    string `json:"email" yaml:"email" toml:"email"`
	Username string `json:"username" yaml:"username" toml:"username"`
}

type exportTag struct {
	ID    string `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
}

type exportTask struct {
	ID          string     `json:"id" yaml:"id" toml:"id"`
	Title       string     `json:"title" yaml:"title" toml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Status      string     `json:"status" yaml:"status" toml:"status"`
	Priority    string     `json:"priority" yaml:"priority" toml:"priority"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	ParentID    string     `json:"parentId,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty"`
	Order       int        `json:"order" yaml:"order" toml:"order"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"due_date,omitempty" toml:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"createdAt" yaml:"created_at" toml:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" yaml:"updated_at" toml:"updated_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completed_at,omitempty" toml:"completed_at,omitempty"`
}

// buildExport snapshots the store with tasks in tree order and tags named.
func buildExport(st *store.Store, now time.Time) exportDoc {
	doc := exportDoc{ExportedAt: now.UTC(), Tags: []exportTag{}, Tasks: []exportTask{}}

	if u := st.CurrentUser(); u != nil {
		doc.User = &exportUser{ID: u.ID, Email: u.Email, Username: u.Username}
	}

	names := map[string]string{}
	for _, t := range st.Tags() {
		names[t.ID] = t.Name
		doc.Tags = append(doc.Tags, exportTag{ID: t.ID, Name: t.Name, Color: t.Color})
	}

	for _, n := range st.Tree("") {
		doc.Tasks = append(doc.Tasks, toExportTask(n.Task, names))
	}
	return doc
}

func toExportTask(t models.Task, tagNames map[string]string) exportTask {
	out := exportTask{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ParentID:    t.ParentID,
		Order:       t.Order,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CompletedAt: t.CompletedAt,
	}
	for _, id := range t.TagIDs {
		if name, ok := tagNames[id]; ok {
			out.Tags = append(out.Tags, name)
		}
	}
	return out
}

func writeExport(w io.Writer, doc exportDoc, format string) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	default:
		return fmt.Errorf("unknown format %q: want json, yaml or toml", format)
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as JSON, YAML or TOML",
		Long: `Write every task and tag to stdout or --output. Tasks are listed in
tree order; tags are referenced by name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := buildExport(a.env.Store, time.Now())

			if output == "" || output == "-" {
				return writeExport(cmd.OutOrStdout(), doc, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := writeExport(f, doc, format); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s and %s to %s\n",
				plural(len(doc.Tasks), "task"), plural(len(doc.Tags), "tag"), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", FormatJSON, "json, yaml or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	setFlagAliases(cmd.Flags(), map[string]string{"out": "output"})
	return cmd
}
