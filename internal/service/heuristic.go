package service

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"iipviz/internal/config"
	"iipviz/internal/model"
	"iipviz/internal/utils"
)

// Metric and chart keywords are matched as whole words against the
// lower-cased query with its marks kept: folded, "giá" reads like the place
// syllable "Gia" and "đường" like "Dương". Unaccented spellings are listed
// only as phrases that cannot be a place name.
var (
	priceKeywords = []string{
		"giá thuê đất", "giá thuê", "giá đất", "giá",
		"gia thue dat", "gia thue", "gia dat", "price", "rent", "rental",
	}
	areaKeywords = []string{"diện tích", "quy mô", "dien tich", "quy mo", "area", "size"}

	pieKeywords  = []string{"biểu đồ tròn", "tròn", "bieu do tron", "pie"}
	lineKeywords = []string{"biểu đồ đường", "đường", "bieu do duong", "line"}
	hbarKeywords = []string{"cột ngang", "ngang", "cot ngang", "horizontal", "barh"}

	clusterExtras = []string{"cluster", "clusters"}

	// visualizeKeywords are matched before folding: "vẽ" folds to "ve", the same as "về"
	visualizeKeywords = []string{"biểu đồ", "vẽ", "so sánh", "trực quan", "visualize", "visualise", "chart", "graph", "plot"}

	// genericNames never become gazetteer keywords on their own
	genericNames = map[string]bool{
		"khu": true, "cum": true, "kcn": true, "ccn": true, "khu cn": true, "cum cn": true,
		"cong nghiep": true, "khu cong nghiep": true, "cum cong nghiep": true,
		"gia": true, "dien tich": true, "tinh": true, "thanh pho": true,
	}

	provincePrefixes = []string{"tinh ", "thanh pho ", "tp. ", "tp "}
	provinceAliases  = map[string][]string{
		"ho chi minh":       {"hcm", "tphcm", "tp.hcm", "sai gon"},
		"ba ria - vung tau": {"ba ria vung tau", "vung tau", "brvt"},
		"thua thien hue":    {"hue"},
	}
)

// Numeric condition patterns, tried as a cascade over the folded query
const (
	numPattern  = `\$?\s*(\d+(?:[.,]\d+)*)`
	unitPattern = `(?:\s*(?:ha|hecta|usd(?:\s*/\s*m(?:2|²))?(?:\s*/\s*nam)?|m2|m²|\$))?`
)

var (
	verbalRangeRe = regexp.MustCompile(`\b(?:trong khoang|khoang|tu|from|between)\s+` + numPattern + unitPattern +
		`\s*(?:den|toi|to|and|-)\s*` + numPattern + unitPattern)
	dashRangeRe  = regexp.MustCompile(numPattern + unitPattern + `\s*-\s*` + numPattern + unitPattern)
	symbolOpRe   = regexp.MustCompile(`(>=|<=|>|<|=)\s*` + numPattern + unitPattern)
	verbalOpRe   = regexp.MustCompile(`\b(` + strings.Join(verbalOperatorOrder, "|") + `)\s+` + numPattern + unitPattern)
	areaUnitRe   = regexp.MustCompile(`\d\s*(?:ha|hecta)\b`)
	priceUnitRe  = regexp.MustCompile(`\d\s*(?:usd|m2|m²)|\$`)
	dashReplacer = strings.NewReplacer("–", "-", "—", "-")
)

// verbalOperatorOrder lists comparison phrases longest first so that
// "lon hon hoac bang" is not read as "lon hon"
var verbalOperatorOrder = []string{
	"greater than or equal to", "less than or equal to",
	"lon hon hoac bang", "nho hon hoac bang",
	"khong vuot qua", "khong qua", "toi thieu", "toi da", "it nhat", "nhieu nhat",
	"greater than", "more than", "at least", "at most", "less than", "fewer than", "equal to",
	"lon hon", "cao hon", "nhieu hon", "rong hon", "vuot",
	"nho hon", "thap hon", "it hon", "hep hon",
	"above", "over", "below", "under",
	"tren", "duoi", "bang",
}

var verbalOperators = map[string]model.Operator{
	"greater than or equal to": model.OpGTE, "lon hon hoac bang": model.OpGTE,
	"toi thieu": model.OpGTE, "it nhat": model.OpGTE, "at least": model.OpGTE,
	"less than or equal to": model.OpLTE, "nho hon hoac bang": model.OpLTE,
	"khong vuot qua": model.OpLTE, "khong qua": model.OpLTE, "toi da": model.OpLTE,
	"nhieu nhat": model.OpLTE, "at most": model.OpLTE,
	"greater than": model.OpGT, "more than": model.OpGT, "lon hon": model.OpGT, "cao hon": model.OpGT,
	"nhieu hon": model.OpGT, "rong hon": model.OpGT, "vuot": model.OpGT, "above": model.OpGT,
	"over": model.OpGT, "tren": model.OpGT,
	"less than": model.OpLT, "fewer than": model.OpLT, "nho hon": model.OpLT, "thap hon": model.OpLT,
	"it hon": model.OpLT, "hep hon": model.OpLT, "below": model.OpLT, "under": model.OpLT, "duoi": model.OpLT,
	"equal to": model.OpEQ, "bang": model.OpEQ,
}

// gazetteerEntry is one folded phrase the heuristic can recognise
type gazetteerEntry struct {
	folded   string
	keyword  string
	province bool
}

// Heuristic extracts a FilterSpec locally, without the completion service.
// It is deterministic and safe for concurrent use.
type Heuristic struct {
	entries        []gazetteerEntry // longest first
	zoneAliases    []string
	clusterAliases []string
}

// NewHeuristic prepares the gazetteer phrases: provinces with their common
// short forms, full site names, cleaned short names ("VSIP II") and brand
// roots with the numbering dropped ("VSIP").
func NewHeuristic(g model.Gazetteer, lex *config.Lexicon) *Heuristic {
	h := &Heuristic{}
	index := make(map[string]int)

	add := func(folded, keyword string, province bool) {
		folded = strings.TrimSpace(folded)
		if utf8.RuneCountInString(folded) < 3 || genericNames[folded] || keyword == "" {
			return
		}
		if i, ok := index[folded]; ok {
			// A province wins over a site sharing its name
			if province && !h.entries[i].province {
				h.entries[i] = gazetteerEntry{folded: folded, keyword: keyword, province: true}
			}
			return
		}
		index[folded] = len(h.entries)
		h.entries = append(h.entries, gazetteerEntry{folded: folded, keyword: keyword, province: province})
	}

	for _, p := range g.Provinces {
		folded := utils.Fold(dashReplacer.Replace(p))
		add(folded, p, true)
		for _, prefix := range provincePrefixes {
			if strings.HasPrefix(folded, prefix) {
				add(folded[len(prefix):], p, true)
			}
		}
		for base, aliases := range provinceAliases {
			if strings.Contains(folded, base) {
				for _, alias := range aliases {
					add(alias, p, true)
				}
			}
		}
	}

	for _, n := range g.Names {
		short := utils.CleanLabel(n)
		foldedShort := utils.Fold(dashReplacer.Replace(short))
		add(utils.Fold(dashReplacer.Replace(n)), short, false)
		add(foldedShort, short, false)
		if root := utils.TrimNumberedSuffix(foldedShort); root != foldedShort {
			fields := strings.Fields(short)
			add(root, strings.Join(fields[:len(fields)-1], " "), false)
		}
	}

	sort.SliceStable(h.entries, func(i, j int) bool {
		a, b := h.entries[i], h.entries[j]
		if len(a.folded) != len(b.folded) {
			return len(a.folded) > len(b.folded)
		}
		if a.province != b.province {
			return a.province
		}
		return a.folded < b.folded
	})

	if lex == nil {
		lex = config.DefaultLexicon()
	}
	h.zoneAliases = foldAll(lex.ZoneAliases)
	h.clusterAliases = append(foldAll(lex.ClusterAliases), clusterExtras...)
	return h
}

type gazetteerHit struct {
	pos   int
	entry gazetteerEntry
}

// Extract analyses a query. Fields it cannot determine keep their defaults.
func (h *Heuristic) Extract(query string) model.FilterSpec {
	spec := model.DefaultFilterSpec()
	text := dashReplacer.Replace(utils.StripURLs(query))
	folded := utils.Fold(text)
	if folded == "" {
		return spec
	}

	masked, hits := h.matchGazetteer(folded)
	words := maskSpans(utils.Lower(text), folded, masked, hits)

	var provinces, names []string
	for _, hit := range hits {
		if hit.entry.province {
			provinces = appendUnique(provinces, hit.entry.keyword)
		} else {
			names = appendUnique(names, hit.entry.keyword)
		}
	}
	switch {
	case len(names) > 0:
		spec.FilterMode = model.ModeBySpecificNames
		spec.SearchKeywords = names
	case len(provinces) > 0:
		spec.FilterMode = model.ModeByProvince
		spec.SearchKeywords = provinces
	}

	spec.TargetType = h.targetType(folded)

	metricHits := findMetricKeywords(words)
	spec.VisualizationMetric = visualizationMetric(metricHits)
	spec.ChartKind = chartKind(words)
	spec.NumericFilters = numericFilters(masked, folded, metricHits, spec.VisualizationMetric)

	return spec
}

// matchGazetteer finds gazetteer phrases, longest first. Each match is masked
// so a shorter phrase can never match inside a longer one already found.
func (h *Heuristic) matchGazetteer(folded string) (string, []gazetteerHit) {
	masked := folded
	var hits []gazetteerHit

	for _, e := range h.entries {
		from := 0
		for {
			i := utils.IndexToken(masked, e.folded, from)
			if i < 0 {
				break
			}
			hits = append(hits, gazetteerHit{pos: i, entry: e})
			masked = utils.Mask(masked, i, i+len(e.folded))
			from = i + len(e.folded)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	return masked, hits
}

// maskSpans blanks the gazetteer hits in lower, the accented twin of folded.
// When the two are not rune-aligned (marks NFC cannot compose) the folded
// masked text is used, and only the unaccented keywords can match.
func maskSpans(lower, folded, masked string, hits []gazetteerHit) string {
	runes := []rune(lower)
	if len(runes) != utf8.RuneCountInString(folded) {
		return masked
	}
	for _, hit := range hits {
		start := utf8.RuneCountInString(folded[:hit.pos])
		end := start + utf8.RuneCountInString(hit.entry.folded)
		for i := start; i < end && i < len(runes); i++ {
			runes[i] = ' '
		}
	}
	return string(runes)
}

// targetType picks Cluster when a cluster word appears before any zone word
func (h *Heuristic) targetType(folded string) model.TargetType {
	cluster := firstToken(folded, h.clusterAliases)
	if cluster < 0 {
		return model.TargetZone
	}
	zone := firstToken(folded, h.zoneAliases)
	if zone >= 0 && zone < cluster {
		return model.TargetZone
	}
	return model.TargetCluster
}

// metricHit positions are rune offsets, comparable across the folded and
// accented forms of the query
type metricHit struct {
	pos    int
	metric model.Metric
}

func findMetricKeywords(words string) []metricHit {
	var hits []metricHit
	scan := func(keywords []string, m model.Metric) {
		s := words
		for _, kw := range keywords {
			for from := 0; ; {
				i := utils.IndexToken(s, kw, from)
				if i < 0 {
					break
				}
				hits = append(hits, metricHit{pos: utf8.RuneCountInString(words[:i]), metric: m})
				// consume so "giá" is not counted again inside "giá thuê"
				s = utils.Mask(s, i, i+len(kw))
				from = i + len(kw)
			}
		}
	}
	scan(priceKeywords, model.MetricPrice)
	scan(areaKeywords, model.MetricArea)

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	return hits
}

func visualizationMetric(hits []metricHit) model.Metric {
	var price, area bool
	for _, h := range hits {
		switch h.metric {
		case model.MetricPrice:
			price = true
		case model.MetricArea:
			area = true
		}
	}
	switch {
	case price && !area:
		return model.MetricPrice
	case area && !price:
		return model.MetricArea
	default:
		return model.MetricDual
	}
}

func chartKind(words string) model.ChartKind {
	switch {
	case firstToken(words, pieKeywords) >= 0:
		return model.ChartPie
	case firstToken(words, lineKeywords) >= 0:
		return model.ChartLine
	case firstToken(words, hbarKeywords) >= 0:
		return model.ChartHorizontalBar
	default:
		return model.ChartBar
	}
}

// numericFilters runs the cascade over masked, which shares its byte offsets
// with folded: verbal ranges, dash ranges, symbolic comparisons, verbal
// comparisons. Every match of the first tier that
// matches anything is kept; later tiers are not consulted.
func numericFilters(masked, folded string, metricHits []metricHit, vis model.Metric) []model.NumericFilterRule {
	rules := []model.NumericFilterRule{}

	for _, re := range []*regexp.Regexp{verbalRangeRe, dashRangeRe} {
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			lo, okLo := utils.ParseQueryNumber(masked[m[2]:m[3]])
			hi, okHi := utils.ParseQueryNumber(masked[m[4]:m[5]])
			if !okLo || !okHi {
				continue
			}
			metric := ruleMetric(masked[m[0]:m[1]], utf8.RuneCountInString(folded[:m[0]]), metricHits, vis)
			if rule, err := model.NewRangeRule(metric, lo, hi); err == nil {
				rules = append(rules, rule)
			}
		}
		if len(rules) > 0 {
			return rules
		}
	}

	for _, re := range []*regexp.Regexp{symbolOpRe, verbalOpRe} {
		for _, m := range re.FindAllStringSubmatchIndex(masked, -1) {
			op, ok := parseComparison(masked[m[2]:m[3]])
			if !ok {
				continue
			}
			v, ok := utils.ParseQueryNumber(masked[m[4]:m[5]])
			if !ok {
				continue
			}
			metric := ruleMetric(masked[m[0]:m[1]], utf8.RuneCountInString(folded[:m[0]]), metricHits, vis)
			if rule, err := model.NewComparisonRule(metric, op, v); err == nil {
				rules = append(rules, rule)
			}
		}
		if len(rules) > 0 {
			return rules
		}
	}
	return rules
}

func parseComparison(s string) (model.Operator, bool) {
	if op, ok := verbalOperators[s]; ok {
		return op, true
	}
	op, err := model.ParseOperator(s)
	return op, err == nil
}

// ruleMetric takes the metric from the unit next to the number, else from
// the closest metric word before the condition, else from the query.
// start is a rune offset.
func ruleMetric(match string, start int, hits []metricHit, vis model.Metric) model.Metric {
	switch {
	case areaUnitRe.MatchString(match):
		return model.MetricArea
	case priceUnitRe.MatchString(match):
		return model.MetricPrice
	}

	nearest := -1
	var metric model.Metric
	for _, h := range hits {
		if h.pos < start && h.pos > nearest {
			nearest, metric = h.pos, h.metric
		}
	}
	if nearest >= 0 {
		return metric
	}
	if vis.Concrete() {
		return vis
	}
	return model.MetricPrice
}

// IsVisualizeIntent reports whether a question asks for a chart
func IsVisualizeIntent(query string) bool {
	lower := strings.ToLower(norm.NFC.String(query))
	for _, kw := range visualizeKeywords {
		if utils.ContainsToken(lower, kw) {
			return true
		}
	}
	return false
}

func firstToken(s string, keywords []string) int {
	first := -1
	for _, kw := range keywords {
		if i := utils.IndexToken(s, kw, 0); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := utils.Fold(s); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, s) {
			return list
		}
	}
	return append(list, s)
}
