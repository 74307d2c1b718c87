package dietgen

// MealTemplate is a named meal with a short preparation note.
type MealTemplate struct {
	Name        string
	Description string
}

// DefaultMealDistribution is the share of the daily target per slot.
var DefaultMealDistribution = map[string]float64{
	"breakfast": 0.20,
	"brunch":    0.15,
	"lunch":     0.30,
	"snack":     0.10,
	"dinner":    0.25,
}

// DefaultTemplates rotate on a weekly cycle per slot.
var DefaultTemplates = map[string][]MealTemplate{
	"breakfast": {
		{"Warm Oatmeal with Ghee", "Oats cooked in water with ghee, cinnamon and a few soaked raisins"},
		{"Almond Milk Porridge", "Rice flakes simmered in almond milk with cardamom"},
		{"Coconut Rice Porridge", "Soft rice porridge with grated coconut and jaggery"},
		{"Spiced Quinoa Bowl", "Quinoa with cumin, ginger and steamed vegetables"},
		{"Millet Porridge with Nuts", "Foxtail millet porridge topped with chopped almonds"},
		{"Barley Porridge", "Pearl barley cooked soft with a pinch of dry ginger"},
		{"Amaranth Porridge", "Amaranth simmered in milk with dates"},
	},
	"brunch": {
		{"Coconut Water & Dates", "Fresh tender coconut water with two dates"},
		{"Fresh Fruit Bowl", "Seasonal sweet fruits, room temperature"},
		{"Green Smoothie", "Spinach, banana and soaked almonds blended with water"},
		{"Buttermilk & Cucumber", "Spiced thin buttermilk with sliced cucumber"},
		{"Pomegranate Juice", "Freshly pressed pomegranate, no added sugar"},
		{"Lassi with Honey", "Thin yogurt drink sweetened with raw honey"},
		{"Rose Water & Almonds", "Chilled rose water with soaked peeled almonds"},
	},
	"lunch": {
		{"Kitchari with Vegetables", "Split mung dal and rice cooked with seasonal vegetables and ghee"},
		{"Quinoa & Vegetable Curry", "Quinoa served with a mild coconut vegetable curry"},
		{"Mixed Dal with Brown Rice", "Three-lentil dal tempered with cumin, served with brown rice"},
		{"Chickpea Curry & Rice", "Soaked chickpeas in tomato gravy with steamed rice"},
		{"Vegetable Biryani", "Basmati rice layered with vegetables and whole spices"},
		{"Sambar & Rice", "Toor dal and vegetable sambar with rice"},
		{"Rajma & Brown Rice", "Kidney beans in onion-tomato gravy with brown rice"},
	},
	"snack": {
		{"Herbal Tea & Almonds", "Caffeine-free herbal infusion with a handful of almonds"},
		{"Mint Tea & Crackers", "Fresh mint tea with whole grain crackers"},
		{"Turmeric Latte & Nuts", "Warm turmeric milk with mixed nuts"},
		{"Ginger Tea & Biscuits", "Fresh ginger tea with two digestive biscuits"},
		{"Cardamom Tea & Dates", "Cardamom infused tea with dates"},
		{"Fennel Tea & Trail Mix", "Fennel seed tea with seeds and dried fruit"},
		{"Tulsi Tea & Roasted Seeds", "Holy basil tea with roasted pumpkin and sunflower seeds"},
	},
	"dinner": {
		{"Light Dal & Rice", "Thin mung dal with a small portion of rice"},
		{"Steamed Vegetables & Roti", "Lightly spiced steamed vegetables with whole wheat roti"},
		{"Vegetable Soup & Bread", "Clear vegetable soup with toasted bread"},
		{"Lentil Soup & Salad", "Red lentil soup with a small cooked salad"},
		{"Moong Dal & Chapati", "Yellow moong dal with chapati"},
		{"Vegetable Khichdi", "Soft rice and lentil khichdi with vegetables"},
		{"Clear Soup & Steamed Rice", "Ginger clear soup with steamed rice"},
	},
}
