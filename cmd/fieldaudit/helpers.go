package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func parsePositiveID(arg, label string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", label, arg)
	}
	return id, nil
}

func parseIDList(args []string, label string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := parsePositiveID(arg, label)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// coordinateFlags reads the optional --lat/--lon pair, distinguishing
// "not given" from zero.
func coordinateFlags(cmd *cobra.Command, lat, lon float64) (*float64, *float64) {
	var latPtr, lonPtr *float64
	if cmd.Flags().Changed("lat") {
		latPtr = &lat
	}
	if cmd.Flags().Changed("lon") {
		lonPtr = &lon
	}
	return latPtr, lonPtr
}

func formatTime(value time.Time) string {
	return value.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatTime(*value)
}

func formatPrice(value *float64) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
