package models

import (
	"encoding/json"
	"testing"
	"time"

	"caab-workers/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d := NewDate(2024, time.March, 7)
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-07"`, string(out))

	var back Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-07T15:04:05Z"`), &back))
	assert.True(t, d.Equal(back))
	assert.Equal(t, "20240307", back.Compact())

	assert.Error(t, json.Unmarshal([]byte(`"07/03/2024"`), &back))
}

func TestOpponent_JSONKeepsVariant(t *testing.T) {
	opps := []Opponent{
		{
			EbsID:              "OPP1",
			RelationshipToCase: "OPP",
			Party: &Individual{
				FirstName:      "Ann",
				Surname:        "Smith",
				DateOfBirth:    DatePtr(NewDate(1980, time.January, 2)),
				AssessedIncome: money.MustParse("100"),
			},
		},
		{
			ID:    IntPtr(4),
			Party: &Organisation{OrganisationName: "Acme Ltd", CurrentlyTrading: true},
		},
	}

	data, err := json.Marshal(opps)
	require.NoError(t, err)

	var back []Opponent
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 2)

	assert.Equal(t, OpponentIndividual, back[0].Type())
	require.NotNil(t, back[0].Individual())
	assert.Equal(t, "Smith", back[0].Individual().Surname)
	assert.Equal(t, "100.00", back[0].Individual().AssessedIncome.String())
	assert.Equal(t, "OPP", back[0].RelationshipToCase)

	assert.Equal(t, OpponentOrganisation, back[1].Type())
	assert.Equal(t, "Acme Ltd", back[1].Organisation().OrganisationName)
	assert.Nil(t, back[1].Individual())
	assert.Equal(t, 4, *back[1].ID)
}

func TestOpponent_UnknownTypeRejected(t *testing.T) {
	var o Opponent
	assert.Error(t, json.Unmarshal([]byte(`{"type":"Robot"}`), &o))
}

func TestOpponent_NoPartyIsDefault(t *testing.T) {
	assert.Equal(t, DefaultOpponentType, Opponent{}.Type())
}

func TestAward_JSONKeepsVariant(t *testing.T) {
	awards := []Award{
		{EbsID: "1", Detail: &CostAward{CertificateCostLsc: money.MustParse("120")}},
		{EbsID: "2", Detail: &LandAward{ValuationAmount: money.MustParse("200000")}},
		{EbsID: "3", Detail: &OtherAssetAward{}},
		{EbsID: "4", Detail: &FinancialAward{AwardAmount: money.MustParse("5")}},
	}

	data, err := json.Marshal(awards)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"awardType":"LAND"`)

	var back []Award
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 4)

	assert.Equal(t, AwardTypeCost, back[0].AwardType())
	assert.Equal(t, "120.00", back[0].Detail.(*CostAward).CertificateCostLsc.String())
	assert.Equal(t, AwardTypeLand, back[1].AwardType())
	assert.Equal(t, AwardTypeOtherAsset, back[2].AwardType())
	assert.Equal(t, "5.00", back[3].Detail.(*FinancialAward).AwardAmount.String())
}

func TestDevolvedPowersApplicable(t *testing.T) {
	assert.True(t, DevolvedPowersApplicable("DP"))
	assert.True(t, DevolvedPowersApplicable("subdp"))
	assert.False(t, DevolvedPowersApplicable("EMER"))
	assert.False(t, DevolvedPowersApplicable(""))
}

func TestGraphLookups(t *testing.T) {
	g := &AssessmentGraph{EntityTypes: []EntityType{{
		Name: EntityTypeGlobal,
		Entities: []Entity{{
			Name:       "300001",
			Attributes: []Attribute{{Name: "APPLICATION_CASE_REF", Value: StringPtr("300001")}},
		}},
	}}}

	attr := g.EntityType(EntityTypeGlobal).Entity("300001").Attribute("APPLICATION_CASE_REF")
	require.NotNil(t, attr)
	assert.Equal(t, "300001", *attr.Value)

	assert.Nil(t, g.EntityType(EntityTypeOpponent).Entity("x").Attribute("y"))
}
