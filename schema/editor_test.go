package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zenrsr/form-craft/model"
)

func TestAddField_Defaults(t *testing.T) {
	fields, err := AddField(nil, TypeText)
	require.NoError(t, err)
	require.Len(t, fields, 1)

	f := fields[0]
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, TypeText, f.Type)
	assert.Equal(t, "Untitled Text", f.Label)
	assert.False(t, f.Required)
	assert.Nil(t, f.Options)
	assert.Nil(t, f.Price)
}

func TestAddField_ChoiceKindsGetSeedOption(t *testing.T) {
	for _, typ := range []string{TypeDropdown, TypeRadio, TypeCheckbox, TypeProductList} {
		fields, err := AddField(nil, typ)
		require.NoError(t, err, typ)
		assert.Equal(t, []string{""}, fields[0].Options, typ)
	}
}

func TestAddField_ProductListGetsZeroPrice(t *testing.T) {
	fields, err := AddField(nil, TypeProductList)
	require.NoError(t, err)
	require.NotNil(t, fields[0].Price)
	assert.Equal(t, 0.0, *fields[0].Price)
	assert.Equal(t, "Untitled Product_list", fields[0].Label)
}

func TestAddField_UnknownType(t *testing.T) {
	fields, err := AddField(nil, "star_rating")
	assert.Error(t, err)
	assert.Empty(t, fields)
}

func TestAddField_GeneratesUniqueIds(t *testing.T) {
	fields, err := AddField(nil, TypeText)
	require.NoError(t, err)
	fields, err = AddField(fields, TypeText)
	require.NoError(t, err)
	assert.NotEqual(t, fields[0].ID, fields[1].ID)
}

func TestUpdateField_MergesPatch(t *testing.T) {
	fields := []model.Field{
		{ID: "f1", Type: TypeText, Label: "One"},
		{ID: "f2", Type: TypeText, Label: "Two"},
	}

	label := "Renamed"
	required := true
	updated := UpdateField(fields, "f2", FieldPatch{Label: &label, Required: &required})

	assert.Equal(t, "One", updated[0].Label)
	assert.Equal(t, "Renamed", updated[1].Label)
	assert.True(t, updated[1].Required)
	assert.Equal(t, TypeText, updated[1].Type)

	// input slice untouched
	assert.Equal(t, "Two", fields[1].Label)
	assert.False(t, fields[1].Required)
}

func TestUpdateField_TypeChangeClearsIncompatibleAttrs(t *testing.T) {
	price := 9.5
	fields := []model.Field{
		{ID: "f1", Type: TypeProductList, Label: "Shop", Options: []string{"Mug"}, Price: &price},
	}

	newType := TypeText
	updated := UpdateField(fields, "f1", FieldPatch{Type: &newType})

	assert.Equal(t, TypeText, updated[0].Type)
	assert.Nil(t, updated[0].Options)
	assert.Nil(t, updated[0].Price)
}

func TestUpdateField_TypeChangeSeedsNewKindDefaults(t *testing.T) {
	fields := []model.Field{
		{ID: "f1", Type: TypeText, Label: "Pick one"},
	}

	newType := TypeDropdown
	updated := UpdateField(fields, "f1", FieldPatch{Type: &newType})

	assert.Equal(t, []string{""}, updated[0].Options)
	assert.Nil(t, updated[0].Price)
}

func TestUpdateField_UnknownIdIsNoop(t *testing.T) {
	fields := []model.Field{{ID: "f1", Type: TypeText, Label: "One"}}
	label := "x"
	updated := UpdateField(fields, "nope", FieldPatch{Label: &label})
	assert.Equal(t, fields, updated)
}

func TestDeleteField(t *testing.T) {
	fields := []model.Field{
		{ID: "f1", Type: TypeText},
		{ID: "f2", Type: TypeEmail},
		{ID: "f3", Type: TypeDate},
	}

	updated := DeleteField(fields, "f2")
	require.Len(t, updated, 2)
	assert.Equal(t, "f1", updated[0].ID)
	assert.Equal(t, "f3", updated[1].ID)

	assert.Equal(t, updated, DeleteField(updated, "missing"))
}

func TestReorder(t *testing.T) {
	fields := []model.Field{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}

	moved := Reorder(fields, 0, 2)
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(moved))

	moved = Reorder(fields, 3, 1)
	assert.Equal(t, []string{"a", "d", "b", "c"}, ids(moved))
}

func TestReorder_InverseRestoresOrder(t *testing.T) {
	fields := []model.Field{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}

	for src := 0; src < len(fields); src++ {
		for dst := 0; dst < len(fields); dst++ {
			moved := Reorder(fields, src, dst)
			restored := Reorder(moved, dst, src)
			assert.Equal(t, ids(fields), ids(restored), "src=%d dst=%d", src, dst)
		}
	}
}

func TestReorder_NoopCases(t *testing.T) {
	fields := []model.Field{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, ids(fields), ids(Reorder(fields, 1, 1)))
	assert.Equal(t, ids(fields), ids(Reorder(fields, -1, 0)))
	assert.Equal(t, ids(fields), ids(Reorder(fields, 0, 5)))
}

func ids(fields []model.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.ID
	}
	return out
}
