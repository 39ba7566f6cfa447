package worldfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/trampball/internal/dynamo"
	"github.com/san-kum/trampball/internal/physics"
)

// ParseError reports a malformed line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Load parses the world file at path.
func Load(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse reads a world description. Entities are not validated until Build.
func Parse(r io.Reader) (*Scene, error) {
	p := &parser{scene: NewScene(), ball: -1, trampoline: -1}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p.scene, nil
}

type parser struct {
	scene *Scene
	line  int

	// Index of the entity modifiers apply to, -1 when there is none.
	ball       int
	trampoline int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(text string) error {
	text = strings.TrimSpace(text)
	if text == "" || text[0] == '#' || text[0] == ';' {
		return nil
	}

	fields := strings.Fields(text)
	keyword, args := strings.ToUpper(fields[0]), fields[1:]

	switch keyword {
	case "RADIUS", "MASS", "BOUNCE":
		return p.ballModifier(keyword, args)
	case "K", "DENSITY", "DAMPING":
		return p.trampolineModifier(keyword, args)
	}

	// Any top-level keyword closes the current block.
	p.ball, p.trampoline = -1, -1

	switch keyword {
	case "STAGE":
		v, err := p.floats(keyword, args, 4, 4)
		if err != nil {
			return err
		}
		p.scene.Stage = physics.Stage{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}

	case "GRAVITY":
		v, err := p.floats(keyword, args, 2, 2)
		if err != nil {
			return err
		}
		p.scene.Gravity = dynamo.V(v[0], v[1])

	case "BALL":
		v, err := p.floats(keyword, args, 2, 2)
		if err != nil {
			return err
		}
		p.scene.Balls = append(p.scene.Balls, newBallSpec(p.line, dynamo.V(v[0], v[1])))
		p.ball = len(p.scene.Balls) - 1

	case "TRAMPOLINE":
		if len(args) == 0 {
			return p.errorf("TRAMPOLINE: missing anchor count")
		}
		anchors, err := strconv.Atoi(args[0])
		if err != nil {
			return p.errorf("TRAMPOLINE: anchor count %q is not an integer", args[0])
		}
		v, err := p.floats(keyword, args[1:], 3, 4)
		if err != nil {
			return err
		}
		var rise float64
		if len(v) == 4 {
			rise = v[3]
		}
		p.scene.Trampolines = append(p.scene.Trampolines,
			newTrampolineSpec(p.line, anchors, v[0], v[1], v[2], rise))
		p.trampoline = len(p.scene.Trampolines) - 1

	case "WALL":
		v, err := p.floats(keyword, args, 6, 6)
		if err != nil {
			return err
		}
		wall := physics.NewWall(dynamo.V(v[0], v[1]), dynamo.V(v[2], v[3]), dynamo.V(v[4], v[5]))
		p.scene.Walls = append(p.scene.Walls, WallSpec{Line: p.line, Wall: wall})

	default:
		return p.errorf("unknown keyword %q", fields[0])
	}
	return nil
}

func (p *parser) ballModifier(keyword string, args []string) error {
	if p.ball < 0 {
		return p.errorf("%s outside a BALL block", keyword)
	}
	v, err := p.floats(keyword, args, 1, 1)
	if err != nil {
		return err
	}
	b := &p.scene.Balls[p.ball]
	switch keyword {
	case "RADIUS":
		b.Radius = v[0]
	case "MASS":
		b.Mass = v[0]
	case "BOUNCE":
		b.Bounce = v[0]
	}
	return nil
}

func (p *parser) trampolineModifier(keyword string, args []string) error {
	if p.trampoline < 0 {
		return p.errorf("%s outside a TRAMPOLINE block", keyword)
	}
	v, err := p.floats(keyword, args, 1, 1)
	if err != nil {
		return err
	}
	t := &p.scene.Trampolines[p.trampoline]
	switch keyword {
	case "K":
		t.K = v[0]
	case "DENSITY":
		t.Density = v[0]
	case "DAMPING":
		t.Damping = v[0]
	}
	return nil
}

func (p *parser) floats(keyword string, args []string, lo, hi int) ([]float64, error) {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return nil, p.errorf("%s: expected %d values, got %d", keyword, lo, len(args))
		}
		return nil, p.errorf("%s: expected %d to %d values, got %d", keyword, lo, hi, len(args))
	}
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, p.errorf("%s: %q is not a number", keyword, a)
		}
		out[i] = f
	}
	return out, nil
}
