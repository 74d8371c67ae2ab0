/*
catalog.go - Pre-built requirement descriptors for supported designations

PURPOSE:
  Provides ready-to-use requirement configurations for the financial
  designations the tracker supports. These are convenience functions that
  pair a period rule with hour thresholds and sub-requirements according
  to each issuing body's published rules.

CATALOG:
  CFP          30h / 2h ethics, birth-month biennial
  CPA          40h, calendar year (state-dependent in practice)
  EA           72h / 16h per year / 2h ethics, fixed 3-year cycle
  CFA          20h, calendar year
  CLU ChFC RICP   30h, even/odd biennial (The American College)
  CIMA CIMC CPWA  40h, even/odd biennial (Investments & Wealth Institute)
  CRPS         16h, even/odd biennial
  CDFA         15h, calendar year
  AIF          6h, calendar year
  IAR          12h / 6h ethics, calendar year
  CEP ECA      30h, anniversary biennial, $250 fee waived by volunteering

CLE is assignable but carries no descriptor: legal CE varies too much by
jurisdiction to encode one rule, so holders get no progress panel.

ANCHOR DATA:
  CFP descriptors need the assignment's birth month; CEP/ECA use the
  assignment's creation date. Everything else derives purely from "now".

SEE ALSO:
  - ce/requirement.go: Descriptor type definition
  - ce/registry.go: Where these land at startup
  - factory/spec.go: JSON-based descriptor creation
*/
package designations

import "github.com/fairhaven/cetrack/ce"

// =============================================================================
// DESIGNATION CONSTRUCTORS
// =============================================================================

// CFPSpec returns the CFP Board requirement: 30 hours per birth-month
// biennium including 2 hours of ethics.
func CFPSpec() ce.RequirementSpec {
	return ce.RequirementSpec{
		Code:          "CFP",
		Name:          "Certified Financial Planner",
		Description:   Descriptions["CFP"],
		Rule:          ce.PeriodRule{Kind: ce.PeriodBirthMonth},
		TotalRequired: ce.Hours(30),
		Subs: []ce.SubRequirementSpec{
			{Name: "ethics", Kind: ce.SubEthicsText, Required: ce.Hours(2), CapEarned: true},
		},
	}
}

// CPASpec returns the common 40-hour calendar-year CPE baseline. State
// boards vary; the assignment's state rides along for display.
func CPASpec() ce.RequirementSpec {
	return calendarYearSpec("CPA", "Certified Public Accountant", 40)
}

// EASpec returns the IRS Enrolled Agent requirement: 72 hours per fixed
// 3-year enrollment cycle, at least 16 each calendar year, 2 on ethics.
func EASpec() ce.RequirementSpec {
	return ce.RequirementSpec{
		Code:          "EA",
		Name:          "Enrolled Agent",
		Description:   Descriptions["EA"],
		Rule:          ce.PeriodRule{Kind: ce.PeriodTriennial},
		TotalRequired: ce.Hours(72),
		Subs: []ce.SubRequirementSpec{
			{Name: "yearly_minimum", Kind: ce.SubYearlyMinimum, Required: ce.Hours(16)},
			{Name: "ethics", Kind: ce.SubEthicsText, Required: ce.Hours(2), CapEarned: true},
		},
	}
}

// CFASpec returns the CFA Institute guideline of 20 PL credits per year.
func CFASpec() ce.RequirementSpec {
	return calendarYearSpec("CFA", "Chartered Financial Analyst", 20)
}

// CLUSpec, ChFCSpec, and RICPSpec share The American College's 30-hour
// even/odd biennium.
func CLUSpec() ce.RequirementSpec {
	return evenOddSpec("CLU", "Chartered Life Underwriter", 30)
}

func ChFCSpec() ce.RequirementSpec {
	return evenOddSpec("ChFC", "Chartered Financial Consultant", 30)
}

func RICPSpec() ce.RequirementSpec {
	return evenOddSpec("RICP", "Retirement Income Certified Professional", 30)
}

// CIMASpec, CIMCSpec, and CPWASpec share the Investments & Wealth
// Institute's 40-hour even/odd biennium.
func CIMASpec() ce.RequirementSpec {
	return evenOddSpec("CIMA", "Certified Investment Management Analyst", 40)
}

func CIMCSpec() ce.RequirementSpec {
	return evenOddSpec("CIMC", "Certified Investment Management Consultant", 40)
}

func CPWASpec() ce.RequirementSpec {
	return evenOddSpec("CPWA", "Certified Private Wealth Advisor", 40)
}

// CRPSSpec returns the College for Financial Planning's 16-hour biennium.
func CRPSSpec() ce.RequirementSpec {
	return evenOddSpec("CRPS", "Chartered Retirement Plans Specialist", 16)
}

// CDFASpec returns the IDFA's 15-hour annual requirement.
func CDFASpec() ce.RequirementSpec {
	return calendarYearSpec("CDFA", "Certified Divorce Financial Analyst", 15)
}

// AIFSpec returns Fi360's 6-hour annual requirement.
func AIFSpec() ce.RequirementSpec {
	return calendarYearSpec("AIF", "Accredited Investment Fiduciary", 6)
}

// IARSpec returns the NASAA model rule: 12 hours per year of which 6
// cover ethics and professional responsibility.
func IARSpec() ce.RequirementSpec {
	spec := calendarYearSpec("IAR", "Investment Adviser Representative", 12)
	spec.Subs = []ce.SubRequirementSpec{
		{Name: "ethics", Kind: ce.SubEthicsText, Required: ce.Hours(6), CapEarned: true},
	}
	return spec
}

// CEPSpec and ECASpec share the CEP Institute's anniversary-anchored
// biennium plus the flat administrative fee volunteering waives.
func CEPSpec() ce.RequirementSpec {
	return anniversarySpec("CEP", "Certified Equity Professional")
}

func ECASpec() ce.RequirementSpec {
	return anniversarySpec("ECA", "Equity Compensation Associate")
}

// =============================================================================
// SHARED SHAPES
// =============================================================================

func calendarYearSpec(code ce.Designation, name string, hours float64) ce.RequirementSpec {
	return ce.RequirementSpec{
		Code:          code,
		Name:          name,
		Description:   Descriptions[string(code)],
		Rule:          ce.PeriodRule{Kind: ce.PeriodCalendarYear},
		TotalRequired: ce.Hours(hours),
	}
}

func evenOddSpec(code ce.Designation, name string, hours float64) ce.RequirementSpec {
	return ce.RequirementSpec{
		Code:          code,
		Name:          name,
		Description:   Descriptions[string(code)],
		Rule:          ce.PeriodRule{Kind: ce.PeriodEvenOdd},
		TotalRequired: ce.Hours(hours),
	}
}

func anniversarySpec(code ce.Designation, name string) ce.RequirementSpec {
	fee := ce.NewAmount(250, ce.UnitDollars)
	waiver := ce.Hours(15)
	return ce.RequirementSpec{
		Code:            code,
		Name:            name,
		Description:     Descriptions[string(code)],
		Rule:            ce.PeriodRule{Kind: ce.PeriodAnniversary},
		TotalRequired:   ce.Hours(30),
		AdminFee:        &fee,
		VolunteerWaiver: &waiver,
	}
}

// =============================================================================
// CATALOG ACCESS
// =============================================================================

// Specs returns every descriptor in the catalog, in display order.
func Specs() []ce.RequirementSpec {
	return []ce.RequirementSpec{
		CFPSpec(), CFASpec(), CPASpec(), CLUSpec(), EASpec(), ChFCSpec(),
		CIMASpec(), CIMCSpec(), CPWASpec(), CRPSSpec(), RICPSpec(),
		CDFASpec(), AIFSpec(), IARSpec(), CEPSpec(), ECASpec(),
	}
}

// NewRegistry builds the production registry from the full catalog.
func NewRegistry() (*ce.Registry, error) {
	return ce.NewRegistry(Specs()...)
}

// Allowed lists every designation a user may assign, including CLE,
// which has no descriptor. Order matches the registration form.
var Allowed = []ce.Designation{
	"CFP", "CFA", "CPA", "CLE", "CLU", "EA", "ChFC", "CIMA", "CIMC",
	"CPWA", "CRPS", "RICP", "CDFA", "AIF", "IAR", "CEP", "ECA",
}

// IsAllowed reports whether a code may be assigned to a user.
func IsAllowed(code ce.Designation) bool {
	for _, d := range Allowed {
		if d == code {
			return true
		}
	}
	return false
}

// NeedsBirthMonth reports whether assigning the code requires a birth
// month (drives registration form validation).
func NeedsBirthMonth(code ce.Designation) bool { return code == "CFP" }

// NeedsState reports whether assigning the code requires a 2-letter
// licensing state.
func NeedsState(code ce.Designation) bool { return code == "CPA" }

// Descriptions holds the requirement summary shown as a tooltip next to
// each designation, keyed by code. Covers every Allowed code.
var Descriptions = map[string]string{
	"CFP":  "CFP® professionals must complete 30 hours of continuing education (CE) every two years, which includes 2 hours of CFP Board-approved Ethics CE and 28 hours in one or more of the CFP Board's Principal Topics.",
	"CFA":  "CFA charterholders must complete 20 professional learning (PL) credits per calendar year through the CFA Institute.",
	"CPA":  "CPAs must complete continuing professional education (CPE) requirements that vary by state. Most states require 40 hours of CPE per year.",
	"CLE":  "Continuing Legal Education (CLE) requirements vary by state and jurisdiction. Most states require attorneys to complete a certain number of CLE hours annually or biennially.",
	"CLU":  "CLU professionals must complete 30 hours of continuing education every 2 years as specified by The American College.",
	"EA":   "Enrolled Agents (EAs) must complete 72 hours of continuing education (CE) every three years, with a minimum of 16 hours per year. At least 2 hours must be on ethics.",
	"ChFC": "ChFC® professionals must complete 30 hours of continuing education every 2 years as specified by The American College.",
	"CIMA": "CIMA® professionals must complete 40 hours of continuing education every 2 years as specified by the Investments & Wealth Institute.",
	"CIMC": "CIMC® professionals must complete 40 hours of continuing education every 2 years as specified by the Investments & Wealth Institute.",
	"CPWA": "CPWA® professionals must complete 40 hours of continuing education every 2 years as specified by the Investments & Wealth Institute.",
	"CRPS": "CRPS® professionals must complete 16 hours of continuing education every 2 years as specified by The College for Financial Planning.",
	"RICP": "RICP® professionals must complete 30 hours of continuing education every 2 years as specified by The American College.",
	"CDFA": "CDFA® professionals must complete 15 hours of continuing education per year as specified by the Institute for Divorce Financial Analysts.",
	"AIF":  "AIF® professionals must complete 6 hours of continuing education per year as specified by Fi360.",
	"IAR":  "Investment Adviser Representatives (IARs) must complete 12 hours of continuing education per year, including 6 hours of ethics/products knowledge.",
	"CEP":  "Certified Equity Professional (CEP) requires 30 hours of continuing education every two years. $250 administrative fee (waived after 15 hours of volunteer work).",
	"ECA":  "Equity Compensation Associate (ECA) requires 30 hours of continuing education every two years. $250 administrative fee (waived after 15 hours of volunteer work).",
}
