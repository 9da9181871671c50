package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/livesync"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/render"
	"github.com/spf13/cobra"
)

var editOpts struct {
	server   string
	page     string
	password string
	formPath string
	outPath  string
	delay    time.Duration
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a page from a form file and preview it as HTML",
	Long: `Signs in to a running server, writes the page's current form to a
name=value file (unless it exists) and watches it. Every save is synced as a
draft and the rendered page is written to the output file.

Commands read from stdin:
  add <collection> [field=value ...]   append an entry, e.g. add what_we_print_item title=Mugs
  remove <collection> <index>          drop an entry and renumber the rest
  flush                                sync pending edits now
  publish                              sync pending edits, then publish the draft`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runEdit(ctx, cmd.InOrStdin())
	},
}

func init() {
	f := editCmd.Flags()
	f.StringVar(&editOpts.server, "server", "http://127.0.0.1:8080", "Base URL of the running server")
	f.StringVar(&editOpts.page, "page", "home", "Page key to edit")
	f.StringVar(&editOpts.password, "password", "", "Admin password (defaults to $ADMIN_PASSWORD)")
	f.StringVar(&editOpts.formPath, "form", "", "Form file to watch (defaults to <page>.form)")
	f.StringVar(&editOpts.outPath, "out", "", "Rendered HTML output (defaults to <page>.html)")
	f.DurationVar(&editOpts.delay, "delay", livesync.DefaultDelay, "Debounce delay before syncing")
	rootCmd.AddCommand(editCmd)
}

func runEdit(ctx context.Context, stdin io.Reader) error {
	schema, err := content.PageSchema(editOpts.page)
	if err != nil {
		return err
	}
	formPath := editOpts.formPath
	if formPath == "" {
		formPath = editOpts.page + ".form"
	}
	outPath := editOpts.outPath
	if outPath == "" {
		outPath = editOpts.page + ".html"
	}
	password := editOpts.password
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}

	transport, err := livesync.NewHTTPTransport(editOpts.server, nil)
	if err != nil {
		return err
	}
	if err := transport.Login(ctx, password); err != nil {
		return err
	}
	current, err := transport.Resolve(ctx, schema.Key)
	if err != nil {
		return fmt.Errorf("load %s: %w", schema.Key, err)
	}

	form, err := initialForm(formPath, schema, current)
	if err != nil {
		return err
	}

	session := newEditSession(schema, formPath, outPath, current, transport.Publish)
	if err := session.writePage(current); err != nil {
		return err
	}
	session.controller = livesync.New(schema.Key, form, transport, session.accept,
		livesync.WithDelay(editOpts.delay),
		livesync.WithPreview(session.preview),
		livesync.WithStateHook(func(s livesync.State, err error) {
			if err != nil {
				logger.Errorf("[edit] sync failed: %v", err)
				return
			}
			logger.Debugf("[edit] %s", s)
		}),
	)
	defer session.controller.Close()

	if stdin != nil {
		go session.readCommands(ctx, stdin)
	}

	logger.Infof("[edit] editing %s: watching %s, writing %s", schema.Key, formPath, outPath)
	return livesync.WatchFormFile(ctx, formPath, session.controller.Replace)
}

// publishFunc promotes the session's drafts of a page.
type publishFunc func(ctx context.Context, page string) (livesync.Result, error)

// editSession ties the controller to the form file and the rendered output.
type editSession struct {
	schema      *content.Schema
	formPath    string
	outPath     string
	publish     publishFunc
	collections map[string]bool
	controller  *livesync.Controller

	mu   sync.Mutex
	last livesync.Result
}

func newEditSession(schema *content.Schema, formPath, outPath string, current livesync.Result, publish publishFunc) *editSession {
	return &editSession{
		schema:      schema,
		formPath:    formPath,
		outPath:     outPath,
		publish:     publish,
		collections: collectionPrefixes(schema, content.SiteSchema()),
		last:        current,
	}
}

// accept renders a response from the server.
func (s *editSession) accept(res livesync.Result) {
	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	if err := s.writePage(res); err != nil {
		logger.Errorf("[edit] write %s: %v", s.outPath, err)
		return
	}
	logger.Infof("[edit] %s updated", s.outPath)
}

// preview renders a structural edit locally before the server answers.
func (s *editSession) preview(form content.Form) {
	s.mu.Lock()
	base := s.last
	s.mu.Unlock()

	next := livesync.Result{Page: s.schema.Merge(base.Page, form), Site: base.Site}
	if site := content.SiteSchema(); site.Touches(form) {
		next.Site = site.Merge(base.Site, form)
	}
	if err := s.writePage(next); err != nil {
		logger.Errorf("[edit] preview %s: %v", s.outPath, err)
	}
}

func (s *editSession) readCommands(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := s.command(ctx, line); err != nil {
			logger.Warnf("[edit] %s: %v", line, err)
		}
	}
}

// command runs one stdin command.
func (s *editSession) command(ctx context.Context, line string) error {
	args := strings.Fields(line)
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return errors.New("usage: add <collection> [field=value ...]")
		}
		if !s.collections[args[1]] {
			return fmt.Errorf("unknown collection %q (known: %s)", args[1], s.knownCollections())
		}
		fields := map[string]string{}
		for _, pair := range args[2:] {
			name, value, ok := strings.Cut(pair, "=")
			if !ok || name == "" {
				return fmt.Errorf("expected field=value, got %q", pair)
			}
			fields[name] = value
		}
		index := s.controller.AddItem(args[1], fields)
		logger.Infof("[edit] added %s", content.ItemPrefix(args[1], index))
		return s.saveForm()
	case "remove":
		if len(args) != 3 {
			return errors.New("usage: remove <collection> <index>")
		}
		if !s.collections[args[1]] {
			return fmt.Errorf("unknown collection %q (known: %s)", args[1], s.knownCollections())
		}
		index, err := strconv.Atoi(args[2])
		if err != nil || index < 0 {
			return fmt.Errorf("bad index %q", args[2])
		}
		s.controller.RemoveItem(args[1], index)
		return s.saveForm()
	case "flush":
		s.controller.Flush()
		return nil
	case "publish":
		s.controller.Flush()
		s.controller.Wait()
		if err := s.controller.Err(); err != nil {
			return fmt.Errorf("draft not saved, not publishing: %w", err)
		}
		res, err := s.publish(ctx, s.schema.Key)
		if err != nil {
			return err
		}
		s.accept(res)
		logger.Infof("[edit] published %s", s.schema.Key)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func (s *editSession) knownCollections() string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// saveForm writes the controller's form back so the file shows renumbered
// entries. The watcher picks the write up and resyncs the same form.
func (s *editSession) saveForm() error {
	var buf bytes.Buffer
	if err := livesync.WriteFormFile(&buf, s.controller.Form()); err != nil {
		return err
	}
	return writeAtomic(s.formPath, buf.Bytes())
}

func (s *editSession) writePage(res livesync.Result) error {
	var buf bytes.Buffer
	if err := render.Page(&buf, s.schema.Key, res.Page, res.Site, render.Options{}); err != nil {
		return err
	}
	return writeAtomic(s.outPath, buf.Bytes())
}

// collectionPrefixes lists the flat prefixes entries of each collection are
// named under, e.g. what_we_print_item or site_footer_contact_line.
func collectionPrefixes(schemas ...*content.Schema) map[string]bool {
	out := map[string]bool{}
	var walk func(fields []content.Field, prefix string)
	walk = func(fields []content.Field, prefix string) {
		for _, f := range fields {
			name := content.FieldName(prefix, f.FormName())
			switch f.Kind {
			case content.KindObject:
				walk(f.Fields, name)
			case content.KindCollection:
				out[name] = true
			}
		}
	}
	for _, s := range schemas {
		walk(s.Fields, s.Prefix)
	}
	return out
}

// initialForm reads the form file, or creates it from the current documents.
func initialForm(path string, schema *content.Schema, current livesync.Result) (content.Form, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return livesync.ParseFormFile(bytes.NewReader(data))
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	form := schema.Encode(current.Page)
	for name, value := range content.SiteSchema().Encode(current.Site) {
		form[name] = value
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s page. Save to sync; site_* fields edit the site settings.\n", schema.Key)
	if err := livesync.WriteFormFile(&buf, form); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return form, nil
}

// writeAtomic writes through a temp file so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(base, filepath.Ext(base))+"-*"+filepath.Ext(base))
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
