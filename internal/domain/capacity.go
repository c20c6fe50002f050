package domain

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// CapacitySnapshot is the derived capacity picture for one calendar day.
type CapacitySnapshot struct {
	Date                  string  `json:"date"`
	TotalCapacity         int     `json:"total_capacity"`
	BookedCapacity        int     `json:"booked_capacity"`
	UtilizationPercentage float64 `json:"utilization_percentage"`
}

// HourLoad is the aggregate party size booked in one hour-of-day bucket.
type HourLoad struct {
	Hour           int `json:"hour"`
	TotalPartySize int `json:"total_party_size"`
}

// UtilizationSummary aggregates bookings over a date range.
type UtilizationSummary struct {
	TotalAppointments  int                `json:"total_appointments"`
	AverageUtilization float64            `json:"average_utilization"`
	DailyUtilization   map[string]float64 `json:"daily_utilization"`
	PeakHours          []HourLoad         `json:"peak_hours"`
	SlowHours          []HourLoad         `json:"slow_hours"`
}

// utilizationPercent clamps booked/total to [0, 100]. Overbooking beyond
// total capacity still reads as 100.
func utilizationPercent(booked, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(booked) / float64(total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// ComputeCapacitySnapshot sums party sizes of active appointments that
// intersect the [dayStart, dayEnd) window.
func ComputeCapacitySnapshot(dayStart, dayEnd time.Time, loc *time.Location, totalCapacity int, appts []Appointment) CapacitySnapshot {
	booked := 0
	for _, a := range appts {
		if !a.Status.Active() {
			continue
		}
		if a.Overlaps(dayStart, dayEnd) {
			booked += a.PartySize
		}
	}
	return CapacitySnapshot{
		Date:                  dayStart.In(loc).Format(dateLayout),
		TotalCapacity:         totalCapacity,
		BookedCapacity:        booked,
		UtilizationPercentage: utilizationPercent(booked, totalCapacity),
	}
}

// countsTowardUtilization reports whether a status contributes booked
// capacity to historical summaries. Cancelled and no-show bookings do not.
func countsTowardUtilization(s AppointmentStatus) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}

// ComputeUtilizationSummary builds the range summary. Every calendar day in
// r appears in DailyUtilization even when nothing is booked. Days and
// hour-of-day buckets are taken in loc, the business's local time.
func ComputeUtilizationSummary(r DateRange, loc *time.Location, totalCapacity int, appts []Appointment) UtilizationSummary {
	daily := make(map[string]float64)
	bookedByDay := make(map[string]int)

	rangeStart := r.Start.In(loc)
	cur := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(), 0, 0, 0, 0, loc)
	rangeEnd := r.End.In(loc)
	last := time.Date(rangeEnd.Year(), rangeEnd.Month(), rangeEnd.Day(), 0, 0, 0, 0, loc)
	for !cur.After(last) {
		daily[cur.Format(dateLayout)] = 0
		cur = cur.AddDate(0, 0, 1)
	}

	total := 0
	byHour := make(map[int]int)
	for _, a := range appts {
		if a.Status == StatusCancelled {
			continue
		}
		total++
		if !countsTowardUtilization(a.Status) {
			continue
		}
		localStart := a.StartTime.In(loc)
		day := localStart.Format(dateLayout)
		if _, ok := daily[day]; !ok {
			continue
		}
		bookedByDay[day] += a.PartySize
		byHour[localStart.Hour()] += a.PartySize
	}

	sum := 0.0
	for day := range daily {
		daily[day] = utilizationPercent(bookedByDay[day], totalCapacity)
		sum += daily[day]
	}
	avg := 0.0
	if len(daily) > 0 {
		avg = sum / float64(len(daily))
	}

	loads := make([]HourLoad, 0, len(byHour))
	for h, p := range byHour {
		loads = append(loads, HourLoad{Hour: h, TotalPartySize: p})
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].TotalPartySize != loads[j].TotalPartySize {
			return loads[i].TotalPartySize > loads[j].TotalPartySize
		}
		return loads[i].Hour < loads[j].Hour
	})

	peak := topHours(loads, 3)
	slow := bottomHours(loads, 3)

	return UtilizationSummary{
		TotalAppointments:  total,
		AverageUtilization: avg,
		DailyUtilization:   daily,
		PeakHours:          peak,
		SlowHours:          slow,
	}
}

func topHours(sorted []HourLoad, n int) []HourLoad {
	if len(sorted) < n {
		n = len(sorted)
	}
	out := make([]HourLoad, n)
	copy(out, sorted[:n])
	return out
}

// bottomHours takes the n least-loaded hours among hours that saw any
// booking, lightest first.
func bottomHours(sorted []HourLoad, n int) []HourLoad {
	if len(sorted) < n {
		n = len(sorted)
	}
	out := make([]HourLoad, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		out = append(out, sorted[i])
	}
	return out
}
