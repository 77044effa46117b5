package main

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/plus3/tetrisrl/session"
	"github.com/plus3/tetrisrl/tetris"
)

type Report struct {
	// Configuration
	RunID  string
	Seed   uint64
	Config session.Config
	Window int

	// Results
	Elapsed   time.Duration
	Frames    int64
	Episodes  []session.Episode
	Best      int
	Mean      float64
	Recent    float64
	Lines     int
	Decisions int
	Locks     int
	Cleared   [5]int
	Spawned   []KindCount

	// Agent state at the end of the run
	ExplorationRate float64
	LearningRate    float64
	Iterations      int
	Memory          int

	Systems []session.SystemStats
	Board   string
}

type KindCount struct {
	Kind  tetris.Kind
	Count int
}

// NewReport collects the state of s at the end of a run.
func NewReport(s *session.Session, seed uint64, window int, elapsed time.Duration) *Report {
	stats := s.Stats()
	sched := s.Scheduler().Stats()
	a := s.Agent()

	r := &Report{
		RunID:           s.ID().String(),
		Seed:            seed,
		Config:          s.Config(),
		Window:          window,
		Elapsed:         elapsed,
		Frames:          sched.Frames,
		Episodes:        stats.Episodes,
		Best:            stats.BestScore(),
		Mean:            stats.MeanScore(0),
		Recent:          stats.MeanScore(window),
		Lines:           stats.TotalLines(),
		Decisions:       stats.Decisions,
		Locks:           stats.Locks,
		ExplorationRate: a.ExplorationRate(),
		LearningRate:    a.LearningRate(),
		Iterations:      a.Iteration(),
		Memory:          a.Memory().Len(),
		Systems:         sched.Systems,
		Board:           s.Game().Snapshot().String(),
	}
	for rows := range r.Cleared {
		r.Cleared[rows] = stats.Cleared(rows)
	}
	for k := tetris.KindS; k <= tetris.KindT; k++ {
		r.Spawned = append(r.Spawned, KindCount{Kind: k, Count: stats.Spawned(k)})
	}
	return r
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Training Report

## Run Configuration
- **Run ID:** {{.RunID}}
- **Seed:** {{.Seed}}
- **Frame Delta:** {{printf "%.4f" .Config.FrameDelta}}s
- **Learning Rate:** {{.Config.Agent.LearningRate}}
- **Discount Factor:** {{.Config.Agent.DiscountFactor}}
- **Exploration Rate:** {{.Config.Agent.ExplorationRate}}
- **Batch Size:** {{.Config.Agent.BatchSize}}
- **Target Sync Interval:** {{.Config.Agent.TargetSyncInterval}}
- **Hidden Layer Width:** {{.Config.Agent.HiddenSize}}
- **Error Clip:** {{.Config.Agent.ErrorClip}}
- **Gradient Clip:** {{.Config.Agent.GradientClip}}

## Results
- **Wall Time:** {{.Elapsed}}
- **Frames:** {{.Frames}}
- **Episodes Finished:** {{len .Episodes}}
- **Best Score:** {{.Best}}
- **Mean Score:** {{printf "%.2f" .Mean}}
- **Mean Score (last {{.Window}}):** {{printf "%.2f" .Recent}}
- **Lines Cleared:** {{.Lines}}
- **Decisions:** {{.Decisions}}
{{if .Episodes}}
## Episodes
{{range .Episodes}}- #{{.Number}}: score {{.Score}}, lines {{.Lines}}, pieces {{.Pieces}}, frames {{.Frames}}
{{end}}{{end}}
## Locks ({{.Locks}})
{{range $rows, $n := .Cleared}}- {{$rows}} rows: {{$n}} ({{pct $n $.Locks}})
{{end}}
## Pieces
{{range .Spawned}}- {{.Kind}}: {{.Count}}
{{end}}
## Agent
- **Exploration Rate:** {{printf "%.4f" .ExplorationRate}}
- **Learning Rate:** {{printf "%.6f" .LearningRate}}
- **Training Steps:** {{.Iterations}}
- **Replay Memory:** {{.Memory}} plays

## Systems
{{range .Systems}}- **{{.Name}}:** {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{end}}{{if .Board}}
## Final Board
` + "```" + `
{{.Board}}` + "```" + `
{{end}}`

	fm := template.FuncMap{
		"pct": func(n, total int) string {
			if total == 0 {
				return "0.0%"
			}
			return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
