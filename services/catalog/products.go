package catalog

// The chapter shop sells a fixed assortment; there is no product admin.
func defaultProducts() []Product {
	return []Product{
		{UID: "product-1", Name: LocalizedText{EN: "Smartphone X", TA: "ஸ்மார்ட்போன் X"}, Price: 59999, Rating: 4.5, Reviews: 120, InStock: true},
		{UID: "product-2", Name: LocalizedText{EN: "Laptop Pro", TA: "லாப்டாப் ப்ரோ"}, Price: 129999, Rating: 4.8, Reviews: 250, InStock: true},
		{UID: "product-3", Name: LocalizedText{EN: "Wireless Earbuds", TA: "வயர்லெஸ் இயர்பட்ஸ்"}, Price: 12999, Rating: 4.2, Reviews: 180, InStock: true},
		{UID: "product-4", Name: LocalizedText{EN: "Smart Watch", TA: "ஸ்மார்ட் வாட்ச்"}, Price: 19999, Rating: 4.0, Reviews: 150, InStock: true},
		{UID: "product-5", Name: LocalizedText{EN: "Digital Camera", TA: "டிஜிட்டல் கேமரா"}, Price: 44999, Rating: 4.6, Reviews: 200, InStock: true},
		{UID: "product-6", Name: LocalizedText{EN: "Gaming Console", TA: "கேமிங் கன்சோல்"}, Price: 39999, Rating: 4.7, Reviews: 300, InStock: true},
		{UID: "product-7", Name: LocalizedText{EN: "Bluetooth Speaker", TA: "புளூடூத் ஸ்பீக்கர்"}, Price: 7999, Rating: 4.1, Reviews: 90, InStock: true},
		{UID: "product-8", Name: LocalizedText{EN: "Fitness Tracker", TA: "ஃபிட்னெஸ் டிராக்கர்"}, Price: 8999, Rating: 4.3, Reviews: 110, InStock: true},
		{UID: "product-9", Name: LocalizedText{EN: "Tablet", TA: "டேப்லெட்"}, Price: 34999, Rating: 4.4, Reviews: 160, InStock: true},
		{UID: "product-10", Name: LocalizedText{EN: "Smartwatch", TA: "ஸ்மார்ட்வாட்ச்"}, Price: 19999, Rating: 4.2, Reviews: 140, InStock: true},
		{UID: "product-11", Name: LocalizedText{EN: "Wireless Mouse", TA: "வயர்லெஸ் மவுஸ்"}, Price: 2999, Rating: 4.0, Reviews: 80, InStock: true},
		{UID: "product-12", Name: LocalizedText{EN: "External Hard Drive", TA: "வெளிப்புற ஹார்ட் டிரைவ்"}, Price: 8999, Rating: 4.5, Reviews: 170, InStock: true},
		{UID: "product-13", Name: LocalizedText{EN: "Portable Charger", TA: "போர்ட்டபிள் சார்ஜர்"}, Price: 4999, Rating: 4.3, Reviews: 130, InStock: true},
		{UID: "product-14", Name: LocalizedText{EN: "Smart Home Hub", TA: "ஸ்மார்ட் ஹோம் ஹப்"}, Price: 12999, Rating: 4.1, Reviews: 100, InStock: true},
		{UID: "product-15", Name: LocalizedText{EN: "Wireless Keyboard", TA: "வயர்லெஸ் கீபோர்ட்"}, Price: 5999, Rating: 4.2, Reviews: 95, InStock: true},
	}
}
