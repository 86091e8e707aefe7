// Package ioadapter reads a scheduling instance from a directory of CSV
// files and builds an instance.Instance from it. It is the external
// loader boundary: the scheduler and objectives packages never import it.
package ioadapter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ccsched/instance"
)

const (
	castPlanFile          = "Cast_plan.csv"
	nonCCProcessingFile   = "nonCC_Processing_Time.csv"
	ccProcessingFile      = "CC_Processing_Time.csv"
	earliestAvailableFile = "Earliest_available_time.csv"
	stageFile             = "Stage.csv"
	transportTimeFile     = "Transport_Time.csv"
)

// LoadInstance reads the six logical tables from dir and builds a
// validated instance.Instance, preserving CC_Processing_Time row order as
// each caster's cast sequence.
func LoadInstance(dir string) (*instance.Instance, error) {
	stageRows, err := readCSV(filepath.Join(dir, stageFile))
	if err != nil {
		return nil, err
	}
	machines, err := parseMachines(stageRows)
	if err != nil {
		return nil, err
	}

	eatRows, err := readCSV(filepath.Join(dir, earliestAvailableFile))
	if err != nil {
		return nil, err
	}
	machineReady, err := parseEarliestAvailable(eatRows)
	if err != nil {
		return nil, err
	}

	transportRows, err := readCSV(filepath.Join(dir, transportTimeFile))
	if err != nil {
		return nil, err
	}
	transport, err := parseTransportTimes(transportRows)
	if err != nil {
		return nil, err
	}

	castPlanRows, err := readCSV(filepath.Join(dir, castPlanFile))
	if err != nil {
		return nil, err
	}
	charges, err := parseCastPlan(castPlanRows)
	if err != nil {
		return nil, err
	}

	nonCCRows, err := readCSV(filepath.Join(dir, nonCCProcessingFile))
	if err != nil {
		return nil, err
	}
	if err := applyNonCCProcessingTime(charges, nonCCRows); err != nil {
		return nil, err
	}

	ccRows, err := readCSV(filepath.Join(dir, ccProcessingFile))
	if err != nil {
		return nil, err
	}
	castOrder, err := applyCCProcessingTime(charges, ccRows)
	if err != nil {
		return nil, err
	}

	return instance.NewWithCastOrder(charges, machines, transport, machineReady, castOrder)
}

// readCSV reads a CSV file with a header row and returns the remaining
// rows as header-keyed maps, preserving row order.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ioadapter: opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ioadapter: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("ioadapter: %s has no header row", path)
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseMachines(rows []map[string]string) (map[instance.MachineID]instance.MachineSpec, error) {
	machines := make(map[instance.MachineID]instance.MachineSpec, len(rows))
	for _, row := range rows {
		id, err := parseMachineID(row["MachineID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Stage.csv: %w", err)
		}
		stage, err := parseInt(row["StageID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Stage.csv: %w", err)
		}
		machines[id] = instance.MachineSpec{ID: id, Stage: instance.StageID(stage)}
	}
	return machines, nil
}

func parseEarliestAvailable(rows []map[string]string) (map[instance.MachineID]instance.Seconds, error) {
	out := make(map[instance.MachineID]instance.Seconds, len(rows))
	for _, row := range rows {
		id, err := parseMachineID(row["MachineID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Earliest_available_time.csv: %w", err)
		}
		sec, err := parseEAT(row["EAT"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Earliest_available_time.csv: %w", err)
		}
		out[id] = sec
	}
	return out, nil
}

func parseTransportTimes(rows []map[string]string) (map[[2]instance.MachineID]int, error) {
	out := make(map[[2]instance.MachineID]int, len(rows))
	for _, row := range rows {
		line := row["Transport_line"]
		parts := strings.SplitN(line, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("ioadapter: Transport_Time.csv: malformed Transport_line %q", line)
		}
		from, err := parseMachineID(parts[0])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Transport_Time.csv: %w", err)
		}
		to, err := parseMachineID(parts[1])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Transport_Time.csv: %w", err)
		}
		tt, err := parseInt(row["Transport_Time"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Transport_Time.csv: %w", err)
		}
		out[[2]instance.MachineID{from, to}] = tt
	}
	return out, nil
}

func parseCastPlan(rows []map[string]string) (map[instance.ChargeID]instance.ChargeSpec, error) {
	charges := make(map[instance.ChargeID]instance.ChargeSpec, len(rows))
	for _, row := range rows {
		id, err := parseChargeID(row["ChargeID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Cast_plan.csv: %w", err)
		}
		caster, err := parseMachineID(row["CC"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Cast_plan.csv: %w", err)
		}
		route, err := parseRoute(row["ChargeRoute"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: Cast_plan.csv: %w", err)
		}
		charges[id] = instance.ChargeSpec{
			ID:     id,
			Route:  route,
			Caster: caster,
			CastID: int(caster),
			NonCC:  map[instance.StageID]instance.Envelope{},
		}
	}
	return charges, nil
}

func applyNonCCProcessingTime(charges map[instance.ChargeID]instance.ChargeSpec, rows []map[string]string) error {
	for _, row := range rows {
		id, err := parseChargeID(row["ChargeID"])
		if err != nil {
			return fmt.Errorf("ioadapter: nonCC_Processing_Time.csv: %w", err)
		}
		stage, err := parseInt(row["StageID"])
		if err != nil {
			return fmt.Errorf("ioadapter: nonCC_Processing_Time.csv: %w", err)
		}
		env, err := parseEnvelope(row)
		if err != nil {
			return fmt.Errorf("ioadapter: nonCC_Processing_Time.csv: %w", err)
		}

		spec, ok := charges[id]
		if !ok {
			return fmt.Errorf("ioadapter: nonCC_Processing_Time.csv: unknown charge %d", id)
		}
		spec.NonCC[instance.StageID(stage)] = env
		charges[id] = spec
	}
	return nil
}

// applyCCProcessingTime fills in each charge's terminal-stage envelope and
// returns the cast sequence per caster, in file row order — the order
// that defines casting continuity downstream.
func applyCCProcessingTime(
	charges map[instance.ChargeID]instance.ChargeSpec,
	rows []map[string]string,
) (map[instance.MachineID][]instance.ChargeID, error) {
	castOrder := map[instance.MachineID][]instance.ChargeID{}
	for _, row := range rows {
		id, err := parseChargeID(row["ChargeID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: CC_Processing_Time.csv: %w", err)
		}
		caster, err := parseMachineID(row["CCID"])
		if err != nil {
			return nil, fmt.Errorf("ioadapter: CC_Processing_Time.csv: %w", err)
		}
		env, err := parseEnvelope(row)
		if err != nil {
			return nil, fmt.Errorf("ioadapter: CC_Processing_Time.csv: %w", err)
		}

		spec, ok := charges[id]
		if !ok {
			return nil, fmt.Errorf("ioadapter: CC_Processing_Time.csv: unknown charge %d", id)
		}
		spec.CC = env
		charges[id] = spec

		castOrder[caster] = append(castOrder[caster], id)
	}
	return castOrder, nil
}

func parseEnvelope(row map[string]string) (instance.Envelope, error) {
	min, err := parseInt(row["MinTime"])
	if err != nil {
		return instance.Envelope{}, err
	}
	std, err := parseInt(row["Standard_Time"])
	if err != nil {
		return instance.Envelope{}, err
	}
	max, err := parseInt(row["MaxTime"])
	if err != nil {
		return instance.Envelope{}, err
	}
	return instance.Envelope{Min: min, Std: std, Max: max}, nil
}

func parseRoute(s string) ([]instance.StageID, error) {
	parts := strings.Split(s, "-")
	route := make([]instance.StageID, 0, len(parts))
	for _, p := range parts {
		v, err := parseInt(p)
		if err != nil {
			return nil, fmt.Errorf("malformed ChargeRoute %q: %w", s, err)
		}
		route = append(route, instance.StageID(v))
	}
	return route, nil
}

func parseMachineID(s string) (instance.MachineID, error) {
	v, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	return instance.MachineID(v), nil
}

func parseChargeID(s string) (instance.ChargeID, error) {
	v, err := parseInt(s)
	if err != nil {
		return 0, err
	}
	return instance.ChargeID(v), nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q: %w", s, err)
	}
	return v, nil
}

// parseEAT parses an "EAT" timestamp of the form "YYYY-MM-DD HH:mm:ss"
// into Seconds since that same fixed epoch (1980-01-01T00:00:00), matching
// the zero-sentinel convention csstate.NewChargeState uses for charges
// that have not yet been allocated anywhere.
func parseEAT(s string) (instance.Seconds, error) {
	const layout = "2006-01-02 15:04:05"
	t, err := time.Parse(layout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("malformed EAT %q: %w", s, err)
	}
	epoch, _ := time.Parse(layout, "1980-01-01 00:00:00")
	return instance.Seconds(t.Sub(epoch).Seconds()), nil
}
