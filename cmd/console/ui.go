package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/ramdeus-bot/pkg/battle"
	"github.com/jwebster45206/ramdeus-bot/pkg/narrator"
)

const (
	AppName         = "RAM DEUS"
	PlaceHolderText = "Type /help for commands..."
)

type entryKind int

const (
	entryInfo entryKind = iota
	entryCommand
	entryReply
	entryError
)

type logEntry struct {
	kind entryKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the operator console.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *apiClient
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	status    *battle.StatusSummary
	state     *battle.BattleState
	entries   []logEntry
	lastReply string

	showQuitModal bool
}

type statusMsg struct {
	status *battle.StatusSummary
	err    error
}

type stateMsg struct {
	state *battle.BattleState
	err   error
}

type attackMsg struct {
	attackerID string
	result     *battle.AttackResult
	err        error
}

type resetMsg struct {
	state *battle.BattleState
	err   error
}

type copiedMsg struct {
	err error
}

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	replyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	tierColors = map[narrator.Tier]lipgloss.Color{
		narrator.TierPossessed:   lipgloss.Color("196"),
		narrator.TierStruggling:  lipgloss.Color("214"),
		narrator.TierNearlyFreed: lipgloss.Color("226"),
		narrator.TierFreed:       lipgloss.Color("86"),
	}
)

const helpText = `Commands:
• /attack <id> - Attack as the given user id
• /status      - Show the battle summary
• /state       - Show the full battle record
• /reset       - Start a new battle
• /help        - Show this help
• Ctrl+Y       - Copy the last reply
• Ctrl+C       - Quit`

func NewConsoleUI(api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		api:          api,
		textarea:     ta,
		logViewport:  logVp,
		metaViewport: viewport.New(20, 20),
		entries:      []logEntry{{kind: entryInfo, text: "Connected. Type /help for commands."}},
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.fetchStatus())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.logViewport, vpCmd = m.logViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		logWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - logWidth - 6

		m.logViewport.Width = logWidth - 2
		m.logViewport.Height = m.height - 6
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 3
		m.textarea.SetWidth(logWidth - 4)

		m.ready = true
		m.writeLog()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			return m, copyToClipboard(m.lastReply)
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleCommand(input)
		}

	case statusMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Status failed: "+msg.err.Error())
		} else {
			m.status = msg.status
			m.reply(narrator.StatusMessage(msg.status))
		}

	case silentStatusMsg:
		m.status = msg.status
		m.metaViewport.SetContent(m.writeMetadata())

	case stateMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "State failed: "+msg.err.Error())
		} else {
			m.state = msg.state
			data, _ := json.MarshalIndent(msg.state, "", "  ")
			m.reply(string(data))
		}

	case attackMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, fmt.Sprintf("Attack as %s failed: %v", msg.attackerID, msg.err))
			break
		}
		m.reply(narrator.AttackMessage(msg.result))
		return m, m.refreshStatus()

	case resetMsg:
		m.loading = false
		if msg.err != nil {
			m.addEntry(entryError, "Reset failed: "+msg.err.Error())
			break
		}
		m.state = msg.state
		m.addEntry(entryInfo, "A new battle begins. Ram Deus is possessed once more.")
		return m, m.refreshStatus()

	case copiedMsg:
		if msg.err != nil {
			m.addEntry(entryError, "Copy failed: "+msg.err.Error())
		} else {
			m.addEntry(entryInfo, "Copied last reply to clipboard.")
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// parseCommand splits "/attack someone" into ("attack", "someone").
func parseCommand(input string) (string, string) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", input
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.addEntry(entryCommand, input)

	name, arg := parseCommand(input)
	switch name {
	case "attack":
		if arg == "" {
			m.addEntry(entryError, "Usage: /attack <id>")
			return m, nil
		}
		m.loading = true
		return m, m.sendAttack(arg)
	case "status":
		m.loading = true
		return m, m.fetchStatus()
	case "state":
		m.loading = true
		return m, m.fetchState()
	case "reset":
		m.loading = true
		return m, m.sendReset()
	case "help":
		m.addEntry(entryInfo, helpText)
	default:
		m.addEntry(entryError, "Unknown command. Type /help for commands.")
	}
	return m, nil
}

func (m *ConsoleUI) addEntry(kind entryKind, text string) {
	m.entries = append(m.entries, logEntry{kind: kind, text: text})
	m.writeLog()
}

func (m *ConsoleUI) reply(text string) {
	m.lastReply = text
	m.addEntry(entryReply, text)
}

func (m *ConsoleUI) writeLog() {
	if !m.ready {
		return
	}
	width := m.logViewport.Width - 4
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(AppName+" OPERATOR CONSOLE") + "\n\n")
	for _, e := range m.entries {
		text := wordwrap.String(e.text, width)
		switch e.kind {
		case entryCommand:
			content.WriteString(commandStyle.Render("> " + text))
		case entryReply:
			content.WriteString(replyStyle.Render(text))
		case entryError:
			content.WriteString(errorStyle.Render(text))
		default:
			content.WriteString(infoStyle.Render(text))
		}
		content.WriteString("\n\n")
	}
	m.logViewport.SetContent(content.String())
	m.logViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("Battle") + "\n\n")
	if m.status == nil {
		content.WriteString(promptStyle.Render("No status yet"))
		return content.String()
	}

	s := m.status
	barWidth := m.metaViewport.Width - 2
	content.WriteString(renderHealthBar(s.Health, barWidth) + "\n")
	content.WriteString(fmt.Sprintf("Health:   %d/%d\n", s.Health, battle.MaxHealth))
	content.WriteString(fmt.Sprintf("Attacked: %d\n", s.AttackerCount))
	content.WriteString(fmt.Sprintf("Needed:   %d\n", s.AttackersNeeded))
	content.WriteString(fmt.Sprintf("Tier:     %s\n", narrator.TierFor(battle.View{
		Health:        s.Health,
		AttackerCount: s.AttackerCount,
		IsDefeated:    s.IsDefeated,
	})))

	if m.state != nil && len(m.state.AttackedBy) > 0 {
		content.WriteString("\n" + titleStyle.Render("Attackers") + "\n")
		for _, id := range m.state.AttackedBy {
			content.WriteString("• " + id + "\n")
		}
		if m.state.LastAttackTime != nil {
			content.WriteString("\nLast strike " + m.state.LastAttackTime.Local().Format(time.Kitchen) + "\n")
		}
	}
	return content.String()
}

// renderHealthBar draws health as a bar colored by narrative tier.
func renderHealthBar(health, width int) string {
	if width < 10 {
		width = 10
	}
	if health < 0 {
		health = 0
	}
	if health > battle.MaxHealth {
		health = battle.MaxHealth
	}
	filled := health * width / battle.MaxHealth
	tier := narrator.TierFor(battle.View{Health: health, IsDefeated: health == 0})

	bar := lipgloss.NewStyle().Foreground(tierColors[tier]).Render(strings.Repeat("█", filled))
	return bar + separatorStyle.Render(strings.Repeat("░", width-filled))
}

func (m ConsoleUI) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.api.getStatus()
		return statusMsg{status: status, err: err}
	}
}

// refreshStatus updates the side panel without echoing into the log.
func (m ConsoleUI) refreshStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.api.getStatus()
		if err != nil {
			return nil
		}
		return silentStatusMsg{status: status}
	}
}

type silentStatusMsg struct {
	status *battle.StatusSummary
}

func (m ConsoleUI) fetchState() tea.Cmd {
	return func() tea.Msg {
		bs, err := m.api.getState()
		return stateMsg{state: bs, err: err}
	}
}

func (m ConsoleUI) sendAttack(attackerID string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.api.attack(attackerID)
		return attackMsg{attackerID: attackerID, result: res, err: err}
	}
}

func (m ConsoleUI) sendReset() tea.Cmd {
	return func() tea.Msg {
		bs, err := m.api.reset()
		return resetMsg{state: bs, err: err}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		if text == "" {
			return copiedMsg{err: fmt.Errorf("nothing to copy yet")}
		}
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Console?"))
	content.WriteString("\n\n")
	content.WriteString("The battle continues without you.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - logWidth - 6

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			separatorStyle.Render(strings.Repeat("─", logWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}
