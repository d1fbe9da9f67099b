// Package analysis summarises the artifacts of a set of fuzzing runs:
// the fuzzer's own statistics, the advisor's step log, and the
// advisor's progress output.
package analysis

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StepLog holds the columns of an advisor step log
type StepLog struct {
	Steps   []int
	Rewards []float64
	Probs   [][]float64
}

// ParseFuzzerStats parses a fuzzer_stats file of "key : value" lines.
// Lines without a colon are skipped, and the percent sign of
// bitmap_cvg is removed.
func ParseFuzzerStats(r io.Reader) (map[string]string, error) {
	stats := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		i := strings.Index(line, ":")
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+1:])
		if key == "bitmap_cvg" {
			value = strings.TrimSpace(strings.TrimRight(value, "%"))
		}
		stats[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "parseFuzzerStats")
	}
	return stats, nil
}

// ParseStepLog parses an advisor step log. Rows whose step or reward
// cannot be parsed are skipped; rows with fewer than four parsable
// probabilities get an empty probability slice.
func ParseStepLog(r io.Reader) (StepLog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var log StepLog
	if _, err := reader.Read(); err == io.EOF {
		return log, nil
	} else if err != nil {
		return StepLog{}, errors.Wrap(err, "parseStepLog: header")
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return StepLog{}, errors.Wrap(err, "parseStepLog")
		}
		if len(row) < 2 {
			continue
		}
		step, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			continue
		}
		reward, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			continue
		}

		log.Steps = append(log.Steps, step)
		log.Rewards = append(log.Rewards, reward)
		log.Probs = append(log.Probs, parseProbs(row[2:]))
	}
	return log, nil
}

func parseProbs(cols []string) []float64 {
	if len(cols) < 4 {
		return []float64{}
	}
	probs := make([]float64, 4)
	for i := range probs {
		p, err := strconv.ParseFloat(strings.TrimSpace(cols[i]), 64)
		if err != nil {
			return []float64{}
		}
		probs[i] = p
	}
	return probs
}

var histogramLine = regexp.MustCompile(`actions=\[([0-9,\s]+)\]`)

// ParseServerLog returns the last action histogram printed in an
// advisor's output, or nil if there is none
func ParseServerLog(r io.Reader) ([]int, error) {
	var last []int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		m := histogramLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		var hist []int
		valid := true
		for _, field := range strings.Split(m[1], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				valid = false
				break
			}
			hist = append(hist, n)
		}
		if valid {
			last = hist
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "parseServerLog")
	}
	return last, nil
}

// parseFile opens path and parses it with parse. A missing file is not
// an error, but gives ok == false.
func parseFile(path string, parse func(io.Reader) error) (ok bool, err error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	defer file.Close()
	if err := parse(file); err != nil {
		return false, errors.Wrap(err, path)
	}
	return true, nil
}
