package dataset

import (
	"github.com/lamchahon-maker/web-dashboard/internal/analytics"
)

const sampleCSV = `date,% Iron Concentrate,% Silica Concentrate,Ore Pulp pH,Ore Pulp Density,Starch Flow,Amina Flow
2020-01-01,65,2,10,1.7,3000,550
2020-01-02 01:00:00,66,1.8,10.1,1.72,3100,560
2020-01-03,"64,5",,9.8,,2950,NaN
not-a-date,60,3,9,1.6,2000,400

2020-01-04,67.25,1.5,10.3,1.75,3200,570
`

func sampleRecords() analytics.Dataset {
	return analytics.Dataset{
		analytics.NewRecord("2020-01-01").With(analytics.IronConcentrate, 65).With(analytics.SilicaConcentrate, 2).With(analytics.PulpPH, 10),
		analytics.NewRecord("2020-01-02").With(analytics.IronConcentrate, 66).With(analytics.SilicaConcentrate, 1.8).With(analytics.PulpPH, 10.1),
		analytics.NewRecord("2020-01-03").With(analytics.IronConcentrate, 64.5).With(analytics.PulpPH, 9.8),
		analytics.NewRecord("2020-01-04").With(analytics.IronConcentrate, 67.25).With(analytics.SilicaConcentrate, 1.5).With(analytics.PulpPH, 10.3),
	}
}
