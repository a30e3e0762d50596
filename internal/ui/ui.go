package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/discq/internal/models"
	"github.com/desertthunder/discq/internal/processor"
	"github.com/desertthunder/discq/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FolderListView ViewState = iota
	ReleaseListView
	ConfirmView
	ExportView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx            context.Context
	view           ViewState
	engine         *tasks.CollectionEngine
	outputDir      string
	template       *processor.Template
	criterion      processor.SortCriterion
	width          int
	height         int
	folderList     list.Model
	folders        []models.Folder
	selectedFolder models.Folder
	releaseList    list.Model
	releases       []models.Release
	selected       map[int64]bool
	progressChan   chan tasks.ProgressUpdate
	progress       tasks.ProgressUpdate
	result         *tasks.ExportResult
	exportPath     string
	err            error
	help           help.Model
	keys           keyMap
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	enter   key.Binding
	back    key.Binding
	toggle  key.Binding
	all     key.Binding
	sortKey key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		all: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all/none"),
		),
		sortKey: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort"),
		),
		yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "yes"),
		),
		no: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "no"),
		),
		restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter},
		{k.back, k.toggle, k.all},
		{k.sortKey, k.restart, k.quit},
	}
}

// folderItem wraps [models.Folder] to implement list.Item.
type folderItem struct {
	folder models.Folder
}

func (i folderItem) FilterValue() string { return i.folder.Name }
func (i folderItem) Title() string       { return i.folder.Name }
func (i folderItem) Description() string {
	return fmt.Sprintf("%d releases", i.folder.Count)
}

// releaseItem wraps [models.Release] to implement list.Item, carrying the
// selection state for the checkbox prefix.
type releaseItem struct {
	release  models.Release
	selected bool
}

func (i releaseItem) FilterValue() string { return i.release.Artist + " " + i.release.Title }
func (i releaseItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, processor.BottomText(i.release))
}
func (i releaseItem) Description() string {
	return i.release.URL
}

type foldersFetchedMsg struct {
	folders []models.Folder
	err     error
}

type releasesFetchedMsg struct {
	releases []models.Release
	err      error
}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.ExportResult
	path   string
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.CollectionEngine, criterion processor.SortCriterion, template *processor.Template, outputDir string) *Model {
	if outputDir == "" {
		outputDir = "."
	}
	return &Model{
		ctx:       ctx,
		view:      FolderListView,
		engine:    engine,
		criterion: criterion,
		template:  template,
		outputDir: outputDir,
		selected:  make(map[int64]bool),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init initializes the TUI by fetching collection folders.
func (m *Model) Init() tea.Cmd {
	return m.fetchFolders()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.folderList.Width() == 0 {
			m.folderList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.releaseList.Width() == 0 {
			m.releaseList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FolderListView:
			return m.handleFolderListKeys(msg)
		case ReleaseListView:
			return m.handleReleaseListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case foldersFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.folders = msg.folders
		items := make([]list.Item, len(msg.folders))
		for i, f := range msg.folders {
			items[i] = folderItem{folder: f}
		}
		m.folderList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.folderList.Title = "Collection Folders"
		m.folderList.SetSize(m.width-4, m.height-8)
		return m, nil

	case releasesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = FolderListView
			return m, nil
		}
		m.releases = msg.releases
		m.selected = make(map[int64]bool)
		m.rebuildReleaseList()
		m.view = ReleaseListView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.result = msg.result
		m.exportPath = msg.path
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView && m.view != FolderListView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FolderListView:
		return m.renderFolderList()
	case ReleaseListView:
		return m.renderReleaseList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleFolderListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.folderList.SelectedItem()
		if selected != nil {
			if f, ok := selected.(folderItem); ok {
				m.selectedFolder = f.folder
				return m, m.fetchReleases(f.folder.ID)
			}
		}
	}

	var cmd tea.Cmd
	m.folderList, cmd = m.folderList.Update(msg)
	return m, cmd
}

func (m *Model) handleReleaseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = FolderListView
		return m, nil
	case " ":
		if item, ok := m.releaseList.SelectedItem().(releaseItem); ok {
			m.selected[item.release.ID] = !m.selected[item.release.ID]
			index := m.releaseList.Index()
			m.rebuildReleaseList()
			m.releaseList.Select(index)
		}
		return m, nil
	case "a":
		all := len(m.selectedIDs()) < len(m.releases)
		for _, rel := range m.releases {
			m.selected[rel.ID] = all
		}
		index := m.releaseList.Index()
		m.rebuildReleaseList()
		m.releaseList.Select(index)
		return m, nil
	case "s":
		m.criterion = nextCriterion(m.criterion)
		m.releases = processor.Sort(m.releases, m.criterion)
		m.rebuildReleaseList()
		return m, nil
	case "enter":
		if len(m.selectedIDs()) == 0 {
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.releaseList, cmd = m.releaseList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n":
		m.view = ReleaseListView
		return m, nil
	case "y":
		m.view = ExportView
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = FolderListView
		m.releases = nil
		m.selected = make(map[int64]bool)
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FolderListView:
		m.folderList, cmd = m.folderList.Update(msg)
	case ReleaseListView:
		m.releaseList, cmd = m.releaseList.Update(msg)
	}
	return m, cmd
}

func (m *Model) rebuildReleaseList() {
	items := make([]list.Item, len(m.releases))
	for i, rel := range m.releases {
		items[i] = releaseItem{release: rel, selected: m.selected[rel.ID]}
	}
	m.releaseList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.releaseList.Title = fmt.Sprintf("%s – %d selected (%s)", m.selectedFolder.Name, len(m.selectedIDs()), m.criterion)
	m.releaseList.SetSize(m.width-4, m.height-8)
}

// selectedIDs returns the checked release ids in displayed order.
func (m *Model) selectedIDs() []int64 {
	ids := make([]int64, 0, len(m.selected))
	for _, rel := range m.releases {
		if m.selected[rel.ID] {
			ids = append(ids, rel.ID)
		}
	}
	return ids
}

func nextCriterion(current processor.SortCriterion) processor.SortCriterion {
	criteria := processor.SortCriteria()
	for i, c := range criteria {
		if c == current {
			return criteria[(i+1)%len(criteria)]
		}
	}
	return criteria[0]
}

func (m *Model) fetchFolders() tea.Cmd {
	return func() tea.Msg {
		folders, err := m.engine.Folders(m.ctx, nil)
		return foldersFetchedMsg{folders: folders, err: err}
	}
}

func (m *Model) fetchReleases(folderID int64) tea.Cmd {
	return func() tea.Msg {
		releases, err := m.engine.Releases(m.ctx, nil, folderID, m.criterion)
		return releasesFetchedMsg{releases: releases, err: err}
	}
}

func (m *Model) startExport() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	opts := tasks.ExportOptions{
		FolderID:    m.selectedFolder.ID,
		SelectedIDs: m.selectedIDs(),
		Criterion:   m.criterion,
		Template:    m.template,
	}

	progress := m.progressChan
	go func() {
		result, err := m.engine.Export(m.ctx, progress, opts)

		var path string
		if err == nil {
			path = filepath.Join(m.outputDir, result.Filename)
			err = os.WriteFile(path, result.CSV, 0644)
		}

		m.result = result
		m.exportPath = path
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return exportCompleteMsg{result: m.result, path: m.exportPath, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return exportCompleteMsg{result: m.result, path: m.exportPath, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderFolderList() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.folderList.View(), helpView)
}

func (m *Model) renderReleaseList() string {
	exportKey := key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "export"),
	)
	helpKeys := []key.Binding{m.keys.toggle, m.keys.all, m.keys.sortKey, exportKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.releaseList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	count := len(m.selectedIDs())
	title := styles.title.Render(fmt.Sprintf("Export %d releases from '%s'?", count, m.selectedFolder.Name))
	info := fmt.Sprintf("\nFolder: %s\nSelected: %d of %d\nSort: %s\n", m.selectedFolder.Name, count, len(m.releases), m.criterion)

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Collection")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchReleases:
		phase = "Fetching releases..."
	case tasks.PrepareRows:
		phase = "Preparing rows..."
	case tasks.RenderCSV:
		phase = "Rendering CSV..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Export failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Export Complete!")
	info := fmt.Sprintf(
		"\nFolder: %s\nRows: %d\nFile: %s",
		m.result.Folder.Name,
		m.result.Rendered,
		m.exportPath,
	)

	var skipped string
	if len(m.result.Skipped) > 0 {
		skipped = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Skipped %d releases:", len(m.result.Skipped))))
		for _, v := range m.result.Skipped {
			skipped += fmt.Sprintf("\n  • %v", v)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, skipped, helpView)
}
