package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/export"
	"github.com/jimezsa/imsctl/internal/schema"
)

type ListCmd struct {
	Entity string `arg:"" help:"Entity name or path, e.g. candidates."`
	Page   int    `help:"Page number, starting at 1." default:"1"`
	Search string `help:"Search text."`
	Status string `help:"Status code filter."`
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
}

func (c *ListCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapList)
	if err != nil {
		return err
	}
	format, err := resolveFormat(ctx, c.Format)
	if err != nil {
		return err
	}
	list, err := ctx.Console.NewList(e)
	if err != nil {
		return err
	}
	page := c.Page - 1
	if page < 0 {
		page = 0
	}
	if err := list.Goto(context.Background(), page, console.Filter{Search: c.Search, Status: c.Status}); err != nil {
		return fmt.Errorf("list %s: %w", e.Path, err)
	}
	snap := list.Snapshot()
	if n, ok := snap.HiddenNotice(); ok {
		ctx.UI.Warnf("%s", n.Text)
	}
	return export.WriteTable(ctx.Out, tableFor(ctx.Console, snap), format, export.WriteOptions{ColorEnabled: ctx.UI.ColorEnabled})
}

func tableFor(c *console.Console, snap console.Snapshot) export.Table {
	e := snap.Entity
	t := export.Table{Page: snap.Page, TotalPages: snap.TotalPages, Records: snap.Items}
	for _, col := range e.Columns {
		t.Headers = append(t.Headers, col.Label)
	}
	for _, rec := range snap.Items {
		id, _ := rec.ID(e.IDField)
		t.IDs = append(t.IDs, id)
		t.Rows = append(t.Rows, c.Cells(e, rec))
	}
	return t
}

type GetCmd struct {
	Entity string `arg:"" help:"Entity name or path."`
	ID     string `arg:"" help:"Record id."`
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
}

func (c *GetCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapGet)
	if err != nil {
		return err
	}
	format, err := resolveFormat(ctx, c.Format)
	if err != nil {
		return err
	}
	return writeDetail(ctx, e, c.ID, format)
}

func writeDetail(ctx *Context, e *schema.Entity, id string, format export.Format) error {
	d := ctx.Console.OpenDetail(context.Background(), e, id)
	if d.Status != console.DetailLoaded {
		return errors.New(d.Message)
	}
	pairs := make([]export.Pair, 0, len(d.Rows))
	for _, row := range d.Rows {
		pairs = append(pairs, export.Pair{Label: row.Label, Value: row.Value})
	}
	return export.WritePairs(ctx.Out, pairs, d.Record, format, export.WriteOptions{ColorEnabled: ctx.UI.ColorEnabled})
}

type CreateCmd struct {
	Entity string   `arg:"" help:"Entity name or path."`
	Set    []string `short:"s" sep:"none" placeholder:"FIELD=VALUE" help:"Field value; repeatable. Multi-select values are comma separated."`
	CV     string   `name:"cv" type:"existingfile" help:"File to upload into the entity's attachment field."`
}

func (c *CreateCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapCreate)
	if err != nil {
		return err
	}
	return submitForm(ctx, e, "", c.Set, c.CV)
}

type UpdateCmd struct {
	Entity string   `arg:"" help:"Entity name or path."`
	ID     string   `arg:"" help:"Record id."`
	Set    []string `short:"s" sep:"none" placeholder:"FIELD=VALUE" help:"Field value; repeatable. Unset fields keep their stored value."`
	CV     string   `name:"cv" type:"existingfile" help:"File to upload into the entity's attachment field."`
}

func (c *UpdateCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapUpdate)
	if err != nil {
		return err
	}
	return submitForm(ctx, e, c.ID, c.Set, c.CV)
}

func submitForm(ctx *Context, e *schema.Entity, id string, sets []string, file string) error {
	bg := context.Background()
	f, err := ctx.Console.OpenForm(bg, e, id)
	if err != nil {
		return err
	}
	if id != "" && len(f.Notices) > 0 {
		// Updates start from the stored record.
		return fmt.Errorf("could not load %s #%s", e.Singular(), id)
	}
	if err := applySets(f, sets); err != nil {
		return err
	}

	var upload *console.Upload
	if file != "" {
		fh, err := os.Open(file)
		if err != nil {
			return err
		}
		defer fh.Close()
		upload = &console.Upload{Filename: filepath.Base(file), Body: fh}
	}

	out := ctx.Console.Submit(bg, f, upload)
	if !out.OK() {
		return errors.New(out.Notice.Text)
	}
	if ctx.JSONOutput && out.Record != nil {
		return export.WritePairs(ctx.Out, nil, out.Record, export.FormatJSON, export.WriteOptions{})
	}
	ctx.UI.Notify(string(out.Notice.Level), out.Notice.Text)
	if out.ID != "" && out.Kind == console.OutcomeCreated {
		ctx.UI.Infof("id: %s", out.ID)
	}
	return nil
}

func applySets(f *console.Form, sets []string) error {
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return fmt.Errorf("--set %q: want FIELD=VALUE", set)
		}
		if err := f.State.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

type DeleteCmd struct {
	Entity string `arg:"" help:"Entity name or path."`
	ID     string `arg:"" help:"Record id."`
	Yes    bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapDelete)
	if err != nil {
		return err
	}
	bg := context.Background()
	if !c.Yes {
		label := "#" + c.ID
		if rec := ctx.Console.Collection(e).Find(bg, c.ID); rec != nil {
			label = ctx.Console.RecordLabel(e, rec, c.ID)
		}
		if !ctx.UI.Confirm(bufio.NewReader(ctx.In), fmt.Sprintf("Delete %s %s?", e.Singular(), label)) {
			ctx.UI.Warnf("Aborted.")
			return nil
		}
	}
	if err := ctx.Console.Collection(e).Remove(bg, c.ID); err != nil {
		return fmt.Errorf("delete %s #%s: %w", e.Singular(), c.ID, err)
	}
	ctx.UI.Successf("Deleted %s #%s.", e.Singular(), c.ID)
	return nil
}

type UploadCmd struct {
	File string `arg:"" type:"existingfile" help:"File to upload."`
}

func (c *UploadCmd) Run(ctx *Context) error {
	fh, err := os.Open(c.File)
	if err != nil {
		return err
	}
	defer fh.Close()
	path, err := ctx.Console.Client().Upload(context.Background(), filepath.Base(c.File), fh)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(ctx.Out, path)
	return err
}
