// Package ui renders the LiveInsight dashboard as a terminal app.
//
// The view layer is dumb: the pipeline pushes snapshots in as messages
// and the model just renders the latest state. All analysis happens
// upstream.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/danvo/liveinsight/internal/model"
	"github.com/danvo/liveinsight/internal/otel"
	"github.com/danvo/liveinsight/internal/pipeline"
	"github.com/danvo/liveinsight/internal/respond"
)

// Tab identifies the active dashboard pane.
type Tab int

const (
	TabComments Tab = iota
	TabAlerts
	TabProducts
	TabAI
	tabCount
)

var tabNames = [tabCount]string{"Comments", "Alerts", "Products", "AI"}

const (
	maxComments = 20
	maxAlerts   = 50
	maxGifts    = 10
	statsEvery  = 2 * time.Second
)

// Model is the root Bubble Tea model for the dashboard.
type Model struct {
	channel string

	// Latest pipeline state
	comments []model.AnnotatedComment
	alerts   []model.Alert
	gifts    []model.GiftEvent
	products []model.ProductStat
	metrics  model.MetricSample
	vibe     pipeline.VibeUpdate

	// Responder and activity state, pulled on a timer
	statsFn     func() respond.Stats
	summariesFn func() []respond.Summary
	eventsFn    func() []otel.Event
	botStats    respond.Stats
	summaries   []respond.Summary
	activity    []otel.Event

	tab     Tab
	width   int
	height  int
	spinner spinner.Model
	started time.Time
}

// New creates the dashboard model. statsFn and summariesFn may be nil
// when no responder is running; eventsFn may be nil when no event ring
// is attached.
func New(channel string, statsFn func() respond.Stats, summariesFn func() []respond.Summary, eventsFn func() []otel.Event) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	return Model{
		channel:     channel,
		statsFn:     statsFn,
		summariesFn: summariesFn,
		eventsFn:    eventsFn,
		spinner:     s,
		started:     time.Now(),
		vibe:        pipeline.VibeUpdate{Score: 50, Mood: "neutral"},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, statsTick())
}

func statsTick() tea.Cmd {
	return tea.Tick(statsEvery, func(time.Time) tea.Msg {
		return statsTickMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.tab = (m.tab + 1) % tabCount
		case key.Matches(msg, keys.PrevTab):
			m.tab = (m.tab + tabCount - 1) % tabCount
		case key.Matches(msg, keys.Comments):
			m.tab = TabComments
		case key.Matches(msg, keys.Alerts):
			m.tab = TabAlerts
		case key.Matches(msg, keys.Products):
			m.tab = TabProducts
		case key.Matches(msg, keys.AI):
			m.tab = TabAI
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statsTickMsg:
		if m.statsFn != nil {
			m.botStats = m.statsFn()
		}
		if m.summariesFn != nil {
			m.summaries = m.summariesFn()
		}
		if m.eventsFn != nil {
			m.activity = m.eventsFn()
		}
		return m, statsTick()

	case CommentMsg:
		m.comments = append(m.comments, model.AnnotatedComment(msg))
		if len(m.comments) > maxComments {
			m.comments = m.comments[len(m.comments)-maxComments:]
		}

	case AlertMsg:
		m.alerts = append(m.alerts, model.Alert(msg))
		if len(m.alerts) > maxAlerts {
			m.alerts = m.alerts[len(m.alerts)-maxAlerts:]
		}

	case GiftMsg:
		m.gifts = append(m.gifts, model.GiftEvent(msg))
		if len(m.gifts) > maxGifts {
			m.gifts = m.gifts[len(m.gifts)-maxGifts:]
		}

	case ProductsMsg:
		m.products = msg

	case MetricsMsg:
		m.metrics = model.MetricSample(msg)

	case VibeMsg:
		m.vibe = pipeline.VibeUpdate(msg)

	case BotStatsMsg:
		m.botStats = respond.Stats(msg)

	case SummariesMsg:
		m.summaries = msg
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case TabComments:
		b.WriteString(m.renderComments())
	case TabAlerts:
		b.WriteString(m.renderAlerts())
	case TabProducts:
		b.WriteString(m.renderProducts())
	case TabAI:
		b.WriteString(m.renderAI())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return b.String()
}

func (m Model) renderHeader() string {
	left := fmt.Sprintf("LIVEINSIGHT │ %s │ %s viewers │ vibe %.0f (%s)",
		m.channel,
		model.FormatMetricValue(m.metrics.Viewers),
		m.vibe.Score,
		m.vibe.Mood,
	)
	right := m.spinner.View() + " live " + time.Since(m.started).Truncate(time.Second).String()

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if padding < 0 {
		padding = 0
	}
	return headerStyle.Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) renderTabs() string {
	var parts []string
	for i := Tab(0); i < tabCount; i++ {
		label := fmt.Sprintf("%d:%s", i+1, tabNames[i])
		if i == TabAlerts && len(m.alerts) > 0 {
			label = fmt.Sprintf("%s(%d)", label, len(m.alerts))
		}
		if i == m.tab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderComments() string {
	if len(m.comments) == 0 {
		return dimStyle.Render("  waiting for chat...")
	}

	var b strings.Builder
	for _, c := range m.comments {
		prefix := "  "
		switch c.Priority {
		case model.PriorityHigh:
			prefix = priorityHighStyle.Render("! ")
		case model.PriorityMedium:
			prefix = priorityMediumStyle.Render("· ")
		}

		sentiment := " "
		if c.Sentiment > 0.1 {
			sentiment = positiveStyle.Render("+")
		} else if c.Sentiment < -0.1 {
			sentiment = negativeStyle.Render("-")
		}

		line := fmt.Sprintf("%s%s %s: %s", prefix, sentiment,
			usernameStyle.Render(c.Username), c.Text)
		if c.Intent != "general" {
			line += dimStyle.Render("  [" + c.Intent + "]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.gifts) > 0 {
		b.WriteString("\n")
		b.WriteString(panelTitleStyle.Render("  Recent gifts"))
		b.WriteString("\n")
		for _, g := range m.gifts {
			b.WriteString(giftStyle.Render(fmt.Sprintf("  ♦ %s sent %s x%d", g.Username, g.GiftName, g.Count)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderAlerts() string {
	if len(m.alerts) == 0 {
		return dimStyle.Render("  no alerts, stream looks healthy")
	}

	var b strings.Builder
	// Newest first.
	for i := len(m.alerts) - 1; i >= 0; i-- {
		a := m.alerts[i]
		var style lipgloss.Style
		switch a.Severity {
		case model.SeverityCritical:
			style = severityCriticalStyle
		case model.SeverityWarning:
			style = severityWarningStyle
		default:
			style = severityInfoStyle
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n",
			dimStyle.Render(a.Time.Format("15:04:05")),
			style.Render(strings.ToUpper(string(a.Severity))),
			a.Message,
		))
		b.WriteString(dimStyle.Render("           " + a.Suggestion))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderProducts() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("  Products by demand"))
	b.WriteString("\n")

	if len(m.products) == 0 {
		b.WriteString(dimStyle.Render("  no products listed"))
		return b.String()
	}

	for i, p := range m.products {
		pin := " "
		if p.Pinned {
			pin = priorityMediumStyle.Render("◎")
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s  %s  %s\n",
			i+1, pin, p.Title,
			dimStyle.Render(p.Price),
			positiveStyle.Render(fmt.Sprintf("%d mentions", p.Mentions)),
		))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Gifts: %d received, ~%s diamonds\n",
		m.vibe.Gifts.Gifts, model.FormatMetricValue(m.vibe.Gifts.Diamonds)))
	return b.String()
}

func (m Model) renderAI() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("  Auto-responder"))
	b.WriteString("\n")

	s := m.botStats
	b.WriteString(fmt.Sprintf("  sent: %d total (%d text, %d vision, %d voice)\n",
		s.TotalSent, s.SentText, s.SentVision, s.SentVoice))
	if !s.LastSent.IsZero() {
		b.WriteString(fmt.Sprintf("  last: %s %q\n",
			dimStyle.Render(s.LastSent.Format("15:04:05")), s.LastText))
	}
	if !s.NextScheduled.IsZero() {
		b.WriteString(fmt.Sprintf("  next scheduled: %s\n",
			dimStyle.Render(s.NextScheduled.Format("15:04:05"))))
	}
	if s.LastLatency > 0 {
		b.WriteString(fmt.Sprintf("  generation latency: %s\n", s.LastLatency.Truncate(time.Millisecond)))
	}

	b.WriteString("\n")
	b.WriteString(panelTitleStyle.Render("  Stream summaries"))
	b.WriteString("\n")
	if len(m.summaries) == 0 {
		b.WriteString(dimStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for i := len(m.summaries) - 1; i >= 0; i-- {
		sum := m.summaries[i]
		b.WriteString(fmt.Sprintf("  %s %s\n",
			dimStyle.Render(sum.Time.Format("15:04:05")), sum.Text))
	}

	b.WriteString("\n")
	b.WriteString(panelTitleStyle.Render("  Recent activity"))
	b.WriteString("\n")
	if len(m.activity) == 0 {
		b.WriteString(dimStyle.Render("  quiet"))
		return b.String()
	}
	for _, ev := range m.activity {
		line := fmt.Sprintf("  %s %-16s %s",
			dimStyle.Render(ev.Time.Format("15:04:05")), ev.Kind, ev.Comp)
		if ev.Msg != "" {
			line += " " + ev.Msg
		}
		if ev.Err != "" {
			line += " " + negativeStyle.Render(ev.Err)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	help := "1-4/tab: switch pane  q: quit"
	status := fmt.Sprintf("[%s] %s comments │ %s likes │ %s",
		strings.ToLower(tabNames[m.tab]),
		model.FormatMetricValue(m.metrics.CommentCount),
		model.FormatMetricValue(m.metrics.Likes),
		help,
	)
	return statusStyle.Render(status)
}

// Key bindings
var keys = struct {
	Quit     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Comments key.Binding
	Alerts   key.Binding
	Products key.Binding
	AI       key.Binding
}{
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	NextTab:  key.NewBinding(key.WithKeys("tab")),
	PrevTab:  key.NewBinding(key.WithKeys("shift+tab")),
	Comments: key.NewBinding(key.WithKeys("1")),
	Alerts:   key.NewBinding(key.WithKeys("2")),
	Products: key.NewBinding(key.WithKeys("3")),
	AI:       key.NewBinding(key.WithKeys("4")),
}
