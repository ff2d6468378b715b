package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/export"
	"github.com/jimezsa/imsctl/internal/schema"
)

type BrowseCmd struct {
	Entity string `arg:"" help:"Entity name or path."`
}

const browseHelp = "n next, p prev, r reload, v ID view, d ID delete, s TEXT search, f STATUS filter, q quit"

func (c *BrowseCmd) Run(ctx *Context) error {
	e, err := ctx.Console.Entity(c.Entity, schema.CapList)
	if err != nil {
		return err
	}
	list, err := ctx.Console.NewList(e)
	if err != nil {
		return err
	}
	b := &browser{ctx: ctx, entity: e, list: list, in: bufio.NewReader(ctx.In)}
	return b.run(context.Background())
}

type browser struct {
	ctx    *Context
	entity *schema.Entity
	list   *console.List
	in     *bufio.Reader
}

func (b *browser) run(ctx context.Context) error {
	b.report(b.list.Load(ctx, 0))
	b.render()
	for {
		fmt.Fprint(b.ctx.Err, "> ")
		line, err := b.in.ReadString('\n')
		if err != nil && line == "" {
			return nil
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
			continue
		case "q", "quit":
			return nil
		case "n":
			b.report(b.list.Next(ctx))
		case "p":
			b.report(b.list.Prev(ctx))
		case "r":
			b.report(b.list.Reload(ctx))
		case "s":
			snap := b.list.Snapshot()
			b.report(b.list.SetFilter(ctx, console.Filter{Search: arg, Status: snap.Filter.Status}))
		case "f":
			snap := b.list.Snapshot()
			b.report(b.list.SetFilter(ctx, console.Filter{Search: snap.Filter.Search, Status: arg}))
		case "v":
			if b.needID(arg) {
				if err := writeDetail(b.ctx, b.entity, arg, export.FormatTable); err != nil {
					b.ctx.UI.Errorf("%v", err)
				}
			}
			continue
		case "d":
			if b.needID(arg) {
				b.delete(ctx, arg)
			}
		case "h", "?", "help":
			b.ctx.UI.Infof("%s", browseHelp)
			continue
		default:
			b.ctx.UI.Warnf("Unknown command %q (%s)", cmd, browseHelp)
			continue
		}
		b.render()
	}
}

func (b *browser) needID(arg string) bool {
	if arg == "" {
		b.ctx.UI.Warnf("An id is required.")
		return false
	}
	return true
}

func (b *browser) delete(ctx context.Context, id string) {
	if !b.entity.Can(schema.CapDelete) {
		b.ctx.UI.Warnf("%s cannot be deleted.", b.entity.Title)
		return
	}
	if !b.ctx.UI.Confirm(b.in, fmt.Sprintf("Delete %s #%s?", b.entity.Singular(), id)) {
		b.ctx.UI.Warnf("Aborted.")
		return
	}
	if err := b.list.Delete(ctx, id); err != nil {
		b.ctx.UI.Errorf("Failed to delete %s #%s: %v", b.entity.Singular(), id, err)
		return
	}
	b.ctx.UI.Successf("Deleted %s #%s.", b.entity.Singular(), id)
}

func (b *browser) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, console.ErrPageOutOfRange):
		b.ctx.UI.Warnf("No such page.")
	default:
		b.ctx.UI.Errorf("%v", err)
	}
}

func (b *browser) render() {
	snap := b.list.Snapshot()
	if snap.Status != console.StatusLoaded {
		return
	}
	if f := snap.Filter; f.Search != "" || f.Status != "" {
		b.ctx.UI.Infof("Filter: search=%q status=%q", f.Search, f.Status)
	}
	if n, ok := snap.HiddenNotice(); ok {
		b.ctx.UI.Warnf("%s", n.Text)
	}
	if err := export.WriteTable(b.ctx.Out, tableFor(b.ctx.Console, snap), export.FormatTable, export.WriteOptions{ColorEnabled: b.ctx.UI.ColorEnabled}); err != nil {
		b.ctx.UI.Errorf("%v", err)
	}
}
