package derived

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestAge(t *testing.T) {
	assert.Nil(t, Age(nil, time.Now()))

	dob := date(2000, 6, 15)
	got := Age(&dob, date(2024, 6, 14))
	require.NotNil(t, got)
	assert.Equal(t, 23, *got)

	got = Age(&dob, date(2024, 6, 15))
	require.NotNil(t, got)
	assert.Equal(t, 24, *got)

	got = Age(&dob, date(2024, 5, 30))
	require.NotNil(t, got)
	assert.Equal(t, 23, *got)
}

func TestBMI(t *testing.T) {
	got := BMI(fptr(170), fptr(70))
	require.NotNil(t, got)
	assert.Equal(t, 24.22, *got)

	assert.Nil(t, BMI(nil, fptr(70)))
	assert.Nil(t, BMI(fptr(170), nil))
	assert.Nil(t, BMI(fptr(170), fptr(0)))
	assert.Nil(t, BMI(fptr(-1), fptr(70)))
}

func TestCalorieTarget(t *testing.T) {
	// 88.362 + 13.397*70 + 4.799*175 - 5.677*30 = 1695.667; *1.375 = 2331.54
	assert.Equal(t, 2331, CalorieTarget(fptr(70), fptr(175), iptr(30), "male", 0))
	// 447.593 + 9.247*60 + 3.098*165 - 4.330*30 = 1383.683; *1.2 = 1660.42
	assert.Equal(t, 1660, CalorieTarget(fptr(60), fptr(165), iptr(30), "Female", 1.2))

	assert.Equal(t, DefaultCalorieTarget, CalorieTarget(nil, fptr(175), iptr(30), "male", 0))
	assert.Equal(t, DefaultCalorieTarget, CalorieTarget(fptr(70), fptr(175), nil, "male", 0))
	assert.Equal(t, DefaultCalorieTarget, CalorieTarget(fptr(70), fptr(175), iptr(30), "other", 0))
}

func TestDoshaPercentages(t *testing.T) {
	assert.Equal(t, DoshaBreakdown{}, DoshaPercentages(0, 0, 0))

	got := DoshaPercentages(10, 10, 10)
	assert.InDelta(t, 33.3, got.Vata, 0.1)
	assert.InDelta(t, 33.3, got.Pitta, 0.1)
	assert.InDelta(t, 33.3, got.Kapha, 0.1)

	got = DoshaPercentages(50, 30, 20)
	assert.Equal(t, DoshaBreakdown{Vata: 50, Pitta: 30, Kapha: 20}, got)
}

func TestDominantDosha(t *testing.T) {
	assert.Equal(t, "vata", DominantDosha(80, 40, 30))
	assert.Equal(t, "pitta-kapha", DominantDosha(20, 70, 65))
	assert.Equal(t, "vata-pitta", DominantDosha(60, 55, 10))
	assert.Equal(t, "tridosha", DominantDosha(33, 33, 34))
	assert.Equal(t, "kapha", DominantDosha(0, 0, 90))
}

func TestDaysRemainingAndProgress(t *testing.T) {
	start := date(2024, 1, 1)
	end := date(2024, 1, 11)

	assert.Equal(t, 0, DaysRemaining(nil, start))
	assert.Equal(t, 10, DaysRemaining(&end, start))
	assert.Equal(t, 0, DaysRemaining(&end, date(2024, 2, 1)))

	assert.Equal(t, 0.0, ProgressPercentage(&start, &end, 10, date(2023, 12, 31)))
	assert.Equal(t, 50.0, ProgressPercentage(&start, &end, 10, date(2024, 1, 6)))
	assert.Equal(t, 100.0, ProgressPercentage(&start, &end, 10, date(2024, 1, 20)))
	assert.Equal(t, 0.0, ProgressPercentage(&start, &end, 0, date(2024, 1, 6)))
}
