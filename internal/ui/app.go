package ui

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/port"
	"go.uber.org/zap"
)

const (
	WindowTitle = "Video to Frame Converter"

	msgEmptySelection = "Cannot convert an empty selection!"
	historyLimit      = 20
)

type SourceLister interface {
	SourceDir() string
	Execute() []entity.SourceVideo
}

type Converter interface {
	Execute(ctx context.Context, sourceName string, sink port.ProgressSink) (*entity.Conversion, error)
	History(ctx context.Context, limit int) ([]*entity.Conversion, error)
}

// Deps wires the window to the conversion core.
type Deps struct {
	Sources    SourceLister
	Converter  Converter
	OutputRoot string
	Logger     *zap.Logger
}

// App is the selection window. Its fields are touched only on the fyne
// thread; conversions run on their own goroutines.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	deps    Deps
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sources  []entity.SourceVideo
	selected int

	list        *widget.List
	statusLabel *widget.Label
	convertBtn  *widget.Button
	refreshBtn  *widget.Button
	openBtn     *widget.Button
}

func NewApp(fyneApp fyne.App, window fyne.Window, deps Deps) *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		fyneApp:  fyneApp,
		window:   window,
		deps:     deps,
		logger:   deps.Logger.With(zap.String("component", "ui")),
		ctx:      ctx,
		cancel:   cancel,
		selected: -1,
	}
	a.build()
	a.Refresh()
	return a
}

func (a *App) build() {
	a.list = widget.NewList(
		func() int { return a.rowCount() },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(a.rowText(id))
		},
	)
	a.list.OnSelected = func(id widget.ListItemID) { a.selected = id }
	a.list.OnUnselected = func(widget.ListItemID) { a.selected = -1 }

	a.statusLabel = widget.NewLabel("Ready")
	a.convertBtn = widget.NewButton("Convert!", a.onConvert)
	a.convertBtn.Importance = widget.HighImportance
	a.refreshBtn = widget.NewButton("Refresh List", a.Refresh)
	a.openBtn = widget.NewButton("Open Output Folder", a.onOpenOutput)

	buttons := container.NewHBox(a.convertBtn, a.refreshBtn, a.openBtn)
	a.window.SetContent(container.NewBorder(nil, container.NewVBox(buttons, a.statusLabel), nil, nil, a.list))
	a.window.SetMainMenu(a.mainMenu())
	a.window.Resize(fyne.NewSize(640, 420))
}

func (a *App) mainMenu() *fyne.MainMenu {
	history := fyne.NewMenuItem("History...", a.showHistory)
	quit := fyne.NewMenuItem("Quit", func() { a.fyneApp.Quit() })
	quit.IsQuit = true

	about := fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About V2F Converter", "Basic Video to Frame Converter", a.window)
	})

	return fyne.NewMainMenu(
		fyne.NewMenu("File", history, fyne.NewMenuItemSeparator(), quit),
		fyne.NewMenu("Help", about),
	)
}

func (a *App) rowCount() int {
	if len(a.sources) == 0 {
		return 1
	}
	return len(a.sources)
}

func (a *App) rowText(id int) string {
	if len(a.sources) == 0 {
		return a.deps.Sources.SourceDir() + " is empty!"
	}
	if id < 0 || id >= len(a.sources) {
		return ""
	}
	src := a.sources[id]
	if src.Converted {
		return src.Name + "  (converted)"
	}
	return src.Name
}

// Refresh re-reads the source directory. Must run on the fyne thread.
func (a *App) Refresh() {
	a.sources = a.deps.Sources.Execute()
	a.selected = -1
	a.list.UnselectAll()
	a.list.Refresh()
}

func (a *App) selectedSource() (entity.SourceVideo, bool) {
	if len(a.sources) == 0 || a.selected < 0 || a.selected >= len(a.sources) {
		return entity.SourceVideo{}, false
	}
	return a.sources[a.selected], true
}

func (a *App) onConvert() {
	src, ok := a.selectedSource()
	if !ok {
		dialog.ShowInformation("Convert", msgEmptySelection, a.window)
		return
	}

	a.statusLabel.SetText("Converting " + src.Name + "...")
	sink := NewProgressDialog(a.window, src.Name)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		conv, err := a.deps.Converter.Execute(a.ctx, src.Name, sink)
		sink.Dismiss()
		status := statusText(src.Name, conv, err)
		if err != nil {
			a.logger.Error("conversion record not saved", zap.String("source", src.Name), zap.Error(err))
		}
		fyne.Do(func() {
			a.statusLabel.SetText(status)
			a.Refresh()
		})
	}()
}

func statusText(name string, conv *entity.Conversion, err error) string {
	if conv == nil {
		return fmt.Sprintf("%s: %v", name, err)
	}
	var text string
	switch conv.Status {
	case entity.ConversionStatusCompleted:
		text = fmt.Sprintf("%s: %d frames written to %s", name, conv.FrameCount, conv.OutputDir)
	case entity.ConversionStatusAlreadyConverted:
		text = name + ": " + msgAlreadyConverted
	default:
		text = fmt.Sprintf("%s: failed (%s)", name, conv.ErrorMessage)
	}
	if err != nil {
		text += " [history not saved]"
	}
	return text
}

// outputTarget is the selected video's frame directory when it exists,
// otherwise the output root.
func (a *App) outputTarget() string {
	if src, ok := a.selectedSource(); ok && src.Converted {
		return src.OutputDir
	}
	return a.deps.OutputRoot
}

func (a *App) onOpenOutput() {
	target := a.outputTarget()
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if err := a.fyneApp.OpenURL(u); err != nil {
		a.logger.Warn("open output folder failed", zap.String("path", abs), zap.Error(err))
		dialog.ShowError(fmt.Errorf("open %s: %w", abs, err), a.window)
	}
}

func (a *App) showHistory() {
	go func() {
		items, err := a.deps.Converter.History(a.ctx, historyLimit)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			dialog.ShowInformation("Recent conversions", historyText(items), a.window)
		})
	}()
}

func historyText(items []*entity.Conversion) string {
	if len(items) == 0 {
		return "No conversions yet."
	}
	var b strings.Builder
	for _, c := range items {
		fmt.Fprintf(&b, "%s  %-18s %s", c.CreatedAt.Local().Format("2006-01-02 15:04"), c.Status, c.SourceName)
		if c.Status == entity.ConversionStatusCompleted {
			fmt.Fprintf(&b, " (%d frames)", c.FrameCount)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ShowAndRun blocks until the window closes, then cancels running
// conversions and waits for their rollback to finish.
func (a *App) ShowAndRun() {
	a.window.ShowAndRun()
	a.Shutdown()
}

func (a *App) Shutdown() {
	a.cancel()
	a.wg.Wait()
}
