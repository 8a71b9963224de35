// Package console runs the interactive prompt session: it reads a
// population and a horizon from a terminal and prints the first predicted
// collision.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/satsim/internal/dynamo"
	"github.com/san-kum/satsim/internal/forecast"
	"github.com/san-kum/satsim/internal/integrators"
)

// StepScale of the console session: bodies move by their full velocity per step.
const StepScale = 1.0

type Session struct {
	Is3D    bool
	Bodies  []dynamo.Body
	Horizon int
}

type reader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *reader) prompt(s string) {
	if r.out != nil {
		fmt.Fprint(r.out, s)
	}
}

func (r *reader) token(field string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", &dynamo.InputError{Field: field, Err: err}
		}
		return "", &dynamo.InputError{Field: field, Err: dynamo.ErrMissing}
	}
	return r.sc.Text(), nil
}

func (r *reader) float(field string) (float64, error) {
	tok, err := r.token(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &dynamo.InputError{Field: field, Value: tok, Err: err}
	}
	return v, nil
}

func (r *reader) int(field string) (int, error) {
	tok, err := r.token(field)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &dynamo.InputError{Field: field, Value: tok, Err: err}
	}
	return v, nil
}

func (r *reader) bool(field string) (bool, error) {
	tok, err := r.token(field)
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(strings.ToLower(tok))
	if err != nil {
		return false, &dynamo.InputError{Field: field, Value: tok, Err: err}
	}
	return v, nil
}

func (r *reader) vec(prefix string, is3D bool) (dynamo.Vec3, error) {
	var v dynamo.Vec3
	var err error
	if v.X, err = r.float(prefix + "x"); err != nil {
		return v, err
	}
	if v.Y, err = r.float(prefix + "y"); err != nil {
		return v, err
	}
	if is3D {
		if v.Z, err = r.float(prefix + "z"); err != nil {
			return v, err
		}
	}
	return v, nil
}

// Read prompts on out (may be nil) and reads whitespace separated answers
// from in. Any malformed or missing answer aborts with an InputError.
func Read(in io.Reader, out io.Writer) (*Session, error) {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	r := &reader{sc: sc, out: out}

	r.prompt("Enter number of satellites: ")
	n, err := r.int("satellite count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, &dynamo.InputError{Field: "satellite count", Value: strconv.Itoa(n), Err: fmt.Errorf("must not be negative")}
	}

	r.prompt("Use 3D simulation? (true/false): ")
	is3D, err := r.bool("3D flag")
	if err != nil {
		return nil, err
	}

	s := &Session{Is3D: is3D, Bodies: make([]dynamo.Body, 0, n)}
	for i := 1; i <= n; i++ {
		if out != nil {
			fmt.Fprintf(out, "Satellite %d details:\n", i)
		}
		r.prompt("ID: ")
		id, err := r.token("id")
		if err != nil {
			return nil, err
		}
		r.prompt("x y z (space separated): ")
		pos, err := r.vec("", is3D)
		if err != nil {
			return nil, err
		}
		r.prompt("vx vy vz (space separated): ")
		vel, err := r.vec("v", is3D)
		if err != nil {
			return nil, err
		}
		r.prompt("Radius: ")
		radius, err := r.float("radius")
		if err != nil {
			return nil, err
		}
		b, err := dynamo.NewLinear(id, radius, pos, vel)
		if err != nil {
			return nil, fmt.Errorf("satellite %d: %w", i, err)
		}
		s.Bodies = append(s.Bodies, b)
	}

	r.prompt("Enter number of future time steps to simulate: ")
	if s.Horizon, err = r.int("time steps"); err != nil {
		return nil, err
	}
	return s, nil
}

// Predict runs the session in stop-at-first mode.
func (s *Session) Predict() *forecast.Report {
	f := forecast.New(integrators.NewEuler(StepScale))
	return f.Predict(s.Bodies, s.Horizon, forecast.StopAtFirst)
}

// Run reads a session and prints a single summary line.
func Run(in io.Reader, out io.Writer) (*forecast.Report, error) {
	s, err := Read(in, out)
	if err != nil {
		return nil, err
	}
	report := s.Predict()
	fmt.Fprintln(out, report.Summary())
	return report, nil
}
