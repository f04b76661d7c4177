package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/paulmach/orb"

	"github.com/kellerweis/poi-atlas/internal/domain"
)

const mapFilename = "map.html"

// heatGradient is the intensity ramp for the heat layer, low to high.
var heatGradient = map[string]string{
	"0.0": "blue",
	"0.2": "cyan",
	"0.4": "lime",
	"0.6": "yellow",
	"0.8": "orange",
	"1.0": "red",
}

// MapReport renders the table as a single self-contained HTML document:
// clustered markers with popups, a heat layer, landmark overlays, and a
// layer control. Leaflet and its plugins are loaded from CDNs, matching
// the conventional single-file map export.
type MapReport struct {
	Title     string
	Region    orb.Bound
	Landmarks []domain.Landmark
}

// NewMapReport creates the interactive map generator.
func NewMapReport(title string, region orb.Bound, landmarks []domain.Landmark) *MapReport {
	return &MapReport{Title: title, Region: region, Landmarks: landmarks}
}

func (m *MapReport) Name() string { return "map" }

type mapMarker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Popup   string  `json:"popup"`
	Tooltip string  `json:"tooltip"`
}

type mapLandmark struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

type mapDocData struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Zoom      int
	Markers   template.JS
	HeatData  template.JS
	Landmarks template.JS
	Gradient  template.JS
	Total     int
}

// Generate writes the map document. An empty table renders a valid map with
// no markers.
func (m *MapReport) Generate(records []domain.PointOfInterest, outputDir string) error {
	markers := make([]mapMarker, 0, len(records))
	heat := make([][]float64, 0, len(records))
	for _, r := range records {
		markers = append(markers, mapMarker{
			Lat:     r.Lat,
			Lon:     r.Lon,
			Popup:   popupHTML(r),
			Tooltip: displayName(r),
		})
		heat = append(heat, []float64{r.Lat, r.Lon, 1})
	}

	landmarks := make([]mapLandmark, 0, len(m.Landmarks))
	for _, lm := range m.Landmarks {
		landmarks = append(landmarks, mapLandmark{Lat: lm.Point.Lat(), Lon: lm.Point.Lon(), Name: lm.Name})
	}

	center := m.Region.Center()
	data := mapDocData{
		Title:     m.Title,
		CenterLat: center.Lat(),
		CenterLon: center.Lon(),
		Zoom:      11,
		Total:     len(records),
	}

	var err error
	if data.Markers, err = jsValue(markers); err != nil {
		return err
	}
	if data.HeatData, err = jsValue(heat); err != nil {
		return err
	}
	if data.Landmarks, err = jsValue(landmarks); err != nil {
		return err
	}
	if data.Gradient, err = jsValue(heatGradient); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, data); err != nil {
		return err
	}
	return writeArtifact(outputDir, mapFilename, buf.Bytes())
}

// jsValue marshals v for embedding in an inline script block.
func jsValue(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}

func displayName(r domain.PointOfInterest) string {
	if r.Name != "" {
		return r.Name
	}
	if r.Brand != "" {
		return r.Brand
	}
	return fmt.Sprintf("Unnamed venue %d", r.ID)
}

func popupHTML(r domain.PointOfInterest) string {
	s := "<b>" + template.HTMLEscapeString(displayName(r)) + "</b>"
	if r.Street != "" {
		addr := r.Street
		if r.Housenumber != "" {
			addr += " " + r.Housenumber
		}
		s += "<br>" + template.HTMLEscapeString(addr)
	}
	if r.District != "" {
		s += "<br>District: " + template.HTMLEscapeString(r.District)
	}
	if r.OpeningHours != "" {
		s += "<br>Hours: " + template.HTMLEscapeString(r.OpeningHours)
	}
	if r.Website != "" {
		s += "<br><a href=\"" + template.HTMLEscapeString(r.Website) + "\" target=\"_blank\">Website</a>"
	}
	s += "<br>Accessibility: " + template.HTMLEscapeString(string(r.Accessibility))
	return s
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .legend {
    background: white; padding: 8px 12px; border-radius: 4px;
    box-shadow: 0 1px 4px rgba(0,0,0,0.3); font: 13px/1.5 sans-serif;
  }
</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var markers = {{.Markers}};
var cluster = L.markerClusterGroup();
markers.forEach(function (m) {
  L.marker([m.lat, m.lon]).bindPopup(m.popup).bindTooltip(m.tooltip).addTo(cluster);
});
cluster.addTo(map);

var heat = L.heatLayer({{.HeatData}}, {
  radius: 15, blur: 10, gradient: {{.Gradient}}
}).addTo(map);

var landmarkLayer = L.layerGroup();
var landmarks = {{.Landmarks}};
landmarks.forEach(function (lm) {
  L.circleMarker([lm.lat, lm.lon], {
    radius: 6, color: '#333', fillColor: '#666', fillOpacity: 0.8
  }).bindTooltip(lm.name).addTo(landmarkLayer);
});
landmarkLayer.addTo(map);

L.control.layers(null, {
  'Venues': cluster,
  'Density': heat,
  'Landmarks': landmarkLayer
}).addTo(map);

var legend = L.control({position: 'bottomright'});
legend.onAdd = function () {
  var div = L.DomUtil.create('div', 'legend');
  div.innerHTML = '<b>{{.Title}}</b><br>' +
    '{{.Total}} venues<br>' +
    'Heat: blue (sparse) to red (dense)';
  return div;
};
legend.addTo(map);
</script>
</body>
</html>
`))
