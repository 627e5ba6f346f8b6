package model

import (
	"fmt"
	"time"
)

// Observation is one traveler record with doubly-interval-censored times.
// All bounds are day offsets from the dataset epoch: exposure happened
// somewhere in [EL, ER], symptom onset somewhere in [SL, SR].
type Observation struct {
	SubjectID string

	EL float64
	ER float64
	SL float64
	SR float64

	// Fever onset window, populated only when Fever is true.
	Fever   bool
	FeverSL float64
	FeverSR float64

	Destination string
	Reviewed    bool
}

// Valid reports whether the censoring windows satisfy the admission
// invariants: EL <= ER, SL <= SR, ER <= SR, EL <= SL.
func (o *Observation) Valid() bool {
	if o.EL > o.ER || o.SL > o.SR {
		return false
	}
	if o.ER > o.SR || o.EL > o.SL {
		return false
	}
	return true
}

func (o *Observation) ExposureWidth() float64 {
	return o.ER - o.EL
}

func (o *Observation) OnsetWidth() float64 {
	return o.SR - o.SL
}

// IncubationRange returns the admissible range [max(SL-ER, 0), SR-EL] of
// the unobserved incubation time.
func (o *Observation) IncubationRange() (float64, float64) {
	lower := o.SL - o.ER
	if lower < 0 {
		lower = 0
	}
	return lower, o.SR - o.EL
}

// MidpointIncubation returns the incubation time implied by the window
// midpoints, used to seed the optimizer.
func (o *Observation) MidpointIncubation() float64 {
	return (o.SL+o.SR)/2 - (o.EL+o.ER)/2
}

func (o *Observation) DebugString() string {
	return fmt.Sprintf("subject: %v, exposure: [%v, %v], onset: [%v, %v]",
		o.SubjectID, o.EL, o.ER, o.SL, o.SR)
}

// Dataset is an ordered collection of observations sharing one reference
// epoch. Filters derive new datasets and never mutate the receiver.
type Dataset struct {
	Name         string
	Epoch        time.Time
	Observations []Observation
}

func (d *Dataset) Size() int {
	if d == nil {
		return 0
	}
	return len(d.Observations)
}

func (d *Dataset) IsEmpty() bool {
	return d.Size() == 0
}

// Filter returns a derived dataset holding the observations for which
// keep returns true, in the original order.
func (d *Dataset) Filter(name string, keep func(*Observation) bool) *Dataset {
	res := &Dataset{
		Name:  name,
		Epoch: d.Epoch,
	}
	for i := range d.Observations {
		if keep(&d.Observations[i]) {
			res.Observations = append(res.Observations, d.Observations[i])
		}
	}
	return res
}

// FeverOnly keeps fever cases and swaps the general onset window for the
// fever-specific one. Records whose fever window breaks the admission
// invariants are dropped.
func (d *Dataset) FeverOnly() *Dataset {
	res := &Dataset{
		Name:  d.Name + "-fever",
		Epoch: d.Epoch,
	}
	for i := range d.Observations {
		obs := d.Observations[i]
		if !obs.Fever {
			continue
		}
		obs.SL = obs.FeverSL
		obs.SR = obs.FeverSR
		if !obs.Valid() {
			continue
		}
		res.Observations = append(res.Observations, obs)
	}
	return res
}

// ForeignOnly keeps travelers whose destination lies outside the outbreak
// origin, i.e. cases detected abroad.
func (d *Dataset) ForeignOnly() *Dataset {
	return d.Filter(d.Name+"-foreign", func(o *Observation) bool {
		return o.Destination != "" && o.Destination != "Wuhan" && o.Destination != "China"
	})
}
