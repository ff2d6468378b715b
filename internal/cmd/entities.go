package cmd

import (
	"strings"

	"github.com/jimezsa/imsctl/internal/export"
	"github.com/jimezsa/imsctl/internal/schema"
)

type EntitiesCmd struct {
	Format string `help:"Output format: table, csv, tsv, json, md." enum:",table,csv,tsv,json,md" default:""`
}

func (c *EntitiesCmd) Run(ctx *Context) error {
	format, err := resolveFormat(ctx, c.Format)
	if err != nil {
		return err
	}
	t := export.Table{Headers: []string{"Path", "Title", "Operations"}}
	for _, e := range ctx.Console.Registry.Entities() {
		ops := operations(e)
		t.IDs = append(t.IDs, e.Name)
		t.Rows = append(t.Rows, []string{e.Path, e.Title, strings.Join(ops, ",")})
		t.Records = append(t.Records, schema.Record{
			"name":       e.Name,
			"path":       e.Path,
			"title":      e.Title,
			"operations": ops,
		})
	}
	return export.WriteTable(ctx.Out, t, format, export.WriteOptions{ColorEnabled: ctx.UI.ColorEnabled})
}

func operations(e *schema.Entity) []string {
	var ops []string
	for _, item := range []struct {
		op   schema.Capability
		name string
	}{
		{schema.CapList, "list"},
		{schema.CapGet, "get"},
		{schema.CapCreate, "create"},
		{schema.CapUpdate, "update"},
		{schema.CapDelete, "delete"},
	} {
		if e.Can(item.op) {
			ops = append(ops, item.name)
		}
	}
	return ops
}
