package engineclient

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Driver owns one engine subprocess and speaks UCI over its pipes. Requests
// on a single Driver are always serialized by the caller; concurrent
// analysis of multiple games requires a Pool (see pool.go).
type Driver struct {
	path string
	cmd  *exec.Cmd
	in   io.WriteCloser
	out  *bufio.Scanner
}

// New spawns the engine binary at path and performs the UCI handshake:
// "uci" -> wait "uciok", set Threads/Hash/UCI_AnalyseMode, "isready" -> wait
// "readyok". Stderr is discarded.
func New(path string) (*Driver, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engineclient: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engineclient: stdout pipe: %w", err)
	}
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engineclient: spawn %s: %w", path, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	d := &Driver{path: path, cmd: cmd, in: stdin, out: scanner}

	if err := d.handshake(); err != nil {
		d.Kill()
		return nil, err
	}
	return d, nil
}

func (d *Driver) handshake() error {
	if err := d.send("uci"); err != nil {
		return err
	}
	if err := d.waitFor("uciok"); err != nil {
		return err
	}
	if err := d.send("setoption name Threads value 1"); err != nil {
		return err
	}
	if err := d.send("setoption name Hash value 256"); err != nil {
		return err
	}
	if err := d.send("setoption name UCI_AnalyseMode value true"); err != nil {
		return err
	}
	if err := d.send("isready"); err != nil {
		return err
	}
	return d.waitFor("readyok")
}

func (d *Driver) send(line string) error {
	_, err := io.WriteString(d.in, line+"\n")
	if err != nil {
		return fmt.Errorf("engineclient: write %q: %w", line, err)
	}
	return nil
}

func (d *Driver) readLine() (string, error) {
	if !d.out.Scan() {
		if err := d.out.Err(); err != nil {
			return "", fmt.Errorf("engineclient: read: %w", err)
		}
		return "", fmt.Errorf("engineclient: engine process closed its output")
	}
	return d.out.Text(), nil
}

func (d *Driver) waitFor(token string) error {
	for {
		line, err := d.readLine()
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

// Evaluate evaluates fen to the given node budget and returns a single
// EvalResult: the latest cp/mate score seen before bestmove, plus the
// engine's chosen move.
func (d *Driver) Evaluate(fen string, nodes int) (EvalResult, error) {
	if err := d.send("position fen " + fen); err != nil {
		return EvalResult{}, err
	}
	if err := d.send(fmt.Sprintf("go nodes %d", nodes)); err != nil {
		return EvalResult{}, err
	}

	var result EvalResult
	for {
		line, err := d.readLine()
		if err != nil {
			return EvalResult{}, err
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				result.BestMove = fields[1]
			}
			return result, nil
		}
		if strings.HasPrefix(line, "info") && strings.Contains(line, " pv ") {
			applyInfoLine(line, &result)
		}
	}
}

// EvaluateMultiPV runs a multi-PV search and returns exactly k PvLine
// entries indexed 0..k-1 (UCI multipv is 1-based). MultiPV is reset to 1
// before returning so subsequent single-PV Evaluate calls behave normally.
func (d *Driver) EvaluateMultiPV(fen string, nodes, k int) ([]PvLine, error) {
	if err := d.send(fmt.Sprintf("setoption name MultiPV value %d", k)); err != nil {
		return nil, err
	}
	if err := d.send("position fen " + fen); err != nil {
		return nil, err
	}
	if err := d.send(fmt.Sprintf("go nodes %d", nodes)); err != nil {
		return nil, err
	}

	lines := make([]PvLine, k)
	var bestMove string
	for {
		line, err := d.readLine()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(line, "bestmove") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				bestMove = fields[1]
			}
			break
		}
		if strings.HasPrefix(line, "info") && strings.Contains(line, " pv ") {
			applyMultiPVLine(line, lines)
		}
	}
	_ = bestMove // the bestmove token mirrors lines[0].PV[0]; PV carries it.

	if err := d.send("setoption name MultiPV value 1"); err != nil {
		return nil, err
	}
	return lines, nil
}

// Quit sends "quit" and waits for the process to exit.
func (d *Driver) Quit() error {
	_ = d.send("quit")
	return d.cmd.Wait()
}

// Kill force-terminates the process without a graceful "quit". Used when the
// driver is being recycled after a transport failure or a dropped task.
func (d *Driver) Kill() {
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	_ = d.cmd.Wait()
}

// Path returns the engine binary path this driver was spawned from, so a
// pool can respawn an equivalent driver after a kill.
func (d *Driver) Path() string {
	return d.path
}

func applyInfoLine(line string, result *EvalResult) {
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "cp":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					result.HasCentipawns = true
					result.HasMate = false
					result.Centipawns = v
				}
			}
		case "mate":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					result.HasMate = true
					result.HasCentipawns = false
					result.MateInPlies = v
				}
			}
		}
	}
}

func applyMultiPVLine(line string, lines []PvLine) {
	fields := strings.Fields(line)
	// Engines omit the multipv token entirely when MultiPV is 1, so an info
	// line with no such token belongs to the first (only) line.
	idx := 0
	for i := 0; i < len(fields); i++ {
		if fields[i] == "multipv" && i+1 < len(fields) {
			if v, err := strconv.Atoi(fields[i+1]); err == nil {
				idx = v - 1
			}
		}
	}
	if idx < 0 || idx >= len(lines) {
		return
	}

	pv := &lines[idx]
	pv.HasCP, pv.HasMate = false, false
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "cp":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					pv.HasCP = true
					pv.Centipawns = v
				}
			}
		case "mate":
			if i+1 < len(fields) {
				if v, err := strconv.Atoi(fields[i+1]); err == nil {
					pv.HasMate = true
					pv.MateInPlies = v
				}
			}
		case "pv":
			pv.PV = append([]string{}, fields[i+1:]...)
			i = len(fields)
		}
	}
}
