package source

// Column names of the NIH ExPORTER extracts and the staging tables
// derived from them. The loader accepts a superset; only these are read
// downstream.
const (
	ColApplicationID   = "APPLICATION_ID"
	ColActivity        = "ACTIVITY"
	ColAdministeringIC = "ADMINISTERING_IC"
	ColCoreProjectNum  = "CORE_PROJECT_NUM"
	ColFiscalYear      = "FY"
	ColProjectTitle    = "PROJECT_TITLE"
	ColProjectStart    = "PROJECT_START"
	ColProjectEnd      = "PROJECT_END"
	ColBudgetStart     = "BUDGET_START"
	ColBudgetEnd       = "BUDGET_END"
	ColTotalCost       = "TOTAL_COST"
	ColOrgName         = "ORG_NAME"
	ColOrgState        = "ORG_STATE"

	ColAbstractText = "ABSTRACT_TEXT"

	ColPMID          = "PMID"
	ColProjectNumber = "PROJECT_NUMBER"

	ColPatentID        = "PATENT_ID"
	ColPatentTitle     = "PATENT_TITLE"
	ColPatentProjectID = "PROJECT_ID"

	ColTrialCoreProject = "Core Project Number"
	ColTrialID          = "ClinicalTrials.gov ID"
	ColTrialStudy       = "Study"
)
