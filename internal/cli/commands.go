package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-modeladmin/pkg/admin"
	"github.com/goliatone/go-modeladmin/pkg/form"
	"github.com/goliatone/go-modeladmin/pkg/model"
	"github.com/goliatone/go-modeladmin/pkg/openapi"
	"github.com/goliatone/go-modeladmin/pkg/prompt"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				if err := s.migrate(cmd.Context()); err != nil {
					return err
				}
				e.log.Debug("users storage ready on %s backend", e.cfg.Backend)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "initialized %s storage\n", e.cfg.Backend)
				return err
			})
		},
	}
}

func newSchemaCommand() *cobra.Command {
	var editing bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the user form fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				schema, err := s.admin.GetForm(!editing)
				if err != nil {
					return err
				}
				return renderSchema(cmd.OutOrStdout(), e.cfg.Output, schema)
			})
		},
	}
	cmd.Flags().BoolVar(&editing, "edit", false, "show the edit form instead of the create form")
	return cmd
}

func newListCommand() *cobra.Command {
	var (
		page   int
		sortBy string
		desc   bool
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users a page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				q := admin.ListQuery{Sort: sortBy, Desc: desc}
				if !all {
					q.Page = admin.Page(page)
				}
				ctx := cmd.Context()
				count, source, err := s.admin.GetList(ctx, q, false)
				if err != nil {
					return err
				}
				instances, err := source.Rows(ctx)
				if err != nil {
					return err
				}

				m := s.admin.Model()
				columns := append([]string{m.PrimaryKey()}, s.config.DisplayColumns(m)...)
				rows := make([]record, 0, len(instances))
				for _, instance := range instances {
					rows = append(rows, recordOf(s.admin, instance, columns))
				}
				return renderListing(cmd.OutOrStdout(), e.cfg.Output, columns, count, rows)
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero-based page index")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort column")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&all, "all", false, "list every row without paging")
	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <pk>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				instance, err := lookup(cmd, s, args[0])
				if err != nil {
					return err
				}
				columns := model.FieldNames(s.admin.Model())
				return renderRecord(cmd.OutOrStdout(), e.cfg.Output, recordOf(s.admin, instance, columns))
			})
		},
	}
}

func newCreateCommand() *cobra.Command {
	var (
		assignments []string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user from --set pairs or prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				ctx := cmd.Context()
				schema, err := s.admin.GetForm(true)
				if err != nil {
					return err
				}
				values, err := submission(cmd, e, schema, assignments, interactive)
				if err != nil {
					return err
				}
				f := schema.Bind(values)
				saved, err := s.admin.SaveModel(ctx, s.admin.New(), f, true)
				if err != nil {
					return formError(cmd, f, err)
				}
				pk, err := s.admin.GetPK(saved)
				if err != nil {
					return err
				}
				e.log.Debug("created user %s", pk)
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", pk)
				return err
			})
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field value as key=value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field")
	return cmd
}

func newEditCommand() *cobra.Command {
	var (
		assignments []string
		interactive bool
	)
	cmd := &cobra.Command{
		Use:   "edit <pk>",
		Short: "Edit a user; fields not given keep their stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				ctx := cmd.Context()
				instance, err := lookup(cmd, s, args[0])
				if err != nil {
					return err
				}
				f, err := admin.EditForm(s.admin, instance)
				if err != nil {
					return err
				}
				current := func(name string) (any, bool) {
					return s.admin.GetColumn(instance, name)
				}

				var values map[string][]string
				if interactive {
					values, err = prompt.Fill(ctx, f.Schema(), prompt.WithDriver(e.driver), prompt.WithCurrent(current))
				} else {
					values, err = parseAssignments(assignments)
					keepBooleans(f.Schema(), values, current)
				}
				if err != nil {
					return err
				}

				f.Submit(values)
				if _, err := s.admin.SaveModel(ctx, instance, f, false); err != nil {
					return formError(cmd, f, err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
				return err
			})
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "field value as key=value (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for every field with current values")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pk>...",
		Short: "Delete users by primary key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				removed, err := s.admin.DeleteModels(cmd.Context(), args...)
				if err != nil {
					return err
				}
				if !removed {
					return errors.Newf("not every user in %s could be deleted", strings.Join(args, ", "))
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.Join(args, ", "))
				return err
			})
		},
	}
}

func newOpenAPICommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the user forms as an OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, func(e *env, s *session) error {
				create, err := s.admin.GetForm(true)
				if err != nil {
					return err
				}
				edit, err := s.admin.GetForm(false)
				if err != nil {
					return err
				}
				edit, err = edit.Extend(s.admin.Model().Name()+"EditForm", edit.Fields()...)
				if err != nil {
					return err
				}
				doc, err := openapi.Document(cmd.Context(), "modeladmin", Version, create, edit)
				if err != nil {
					return err
				}
				out := format
				if out == "" {
					out = e.cfg.Output
				}
				if out != "json" {
					out = "yaml"
				}
				return encode(cmd.OutOrStdout(), out, doc)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "document format (json|yaml); defaults to yaml unless --output json")
	return cmd
}

func lookup(cmd *cobra.Command, s *session, pk string) (any, error) {
	instance, ok, err := s.admin.GetObject(cmd.Context(), pk)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Newf("%s %q not found", s.admin.Name(), pk)
	}
	return instance, nil
}

func recordOf(m admin.ModelAdmin, instance any, columns []string) record {
	r := record{columns: columns, values: make(map[string]any, len(columns))}
	for _, column := range columns {
		if value, ok := m.GetColumn(instance, column); ok {
			r.values[column] = value
		}
	}
	return r
}

func submission(cmd *cobra.Command, e *env, schema *form.Schema, assignments []string, interactive bool) (map[string][]string, error) {
	if interactive {
		return prompt.Fill(cmd.Context(), schema, prompt.WithDriver(e.driver))
	}
	return parseAssignments(assignments)
}

// keepBooleans re-submits stored booleans the caller did not set, since an
// absent checkbox submits false.
func keepBooleans(schema *form.Schema, values map[string][]string, current form.Getter) {
	if values == nil {
		return
	}
	for _, field := range schema.Fields() {
		if field.Kind != form.KindBoolean {
			continue
		}
		if _, set := values[field.Name]; set {
			continue
		}
		if value, ok := current(field.Name); ok {
			values[field.Name] = []string{fmt.Sprint(value)}
		}
	}
}

// formError prints field errors of an invalid form to stderr.
func formError(cmd *cobra.Command, f *form.Form, err error) error {
	if !errors.Is(err, admin.ErrInvalidForm) {
		return err
	}
	fieldErrors := f.Errors()
	names := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", name, strings.Join(fieldErrors[name], " "))
	}
	for _, msg := range f.FormErrors() {
		fmt.Fprintln(cmd.ErrOrStderr(), msg)
	}
	return errors.Newf("%s form is not valid", strings.TrimSuffix(f.Schema().Name(), "Form"))
}
