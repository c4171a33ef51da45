package main

import (
	"jewelry-backoffice/internal/service"

	"github.com/shopspring/decimal"
)

func money(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var products = []service.ProductInput{
	{SKU: "GR001", Name: "Gold Ring 18K", Category: "Gold Rings", CostPrice: money(450), SellingPrice: money(650), StockQuantity: 25},
	{SKU: "GR002", Name: "Gold Ring 21K", Category: "Gold Rings", CostPrice: money(550), SellingPrice: money(800), StockQuantity: 15},
	{SKU: "GN001", Name: "Gold Necklace 18K", Category: "Gold Necklaces", CostPrice: money(1200), SellingPrice: money(1750), StockQuantity: 12},
	{SKU: "GN002", Name: "Gold Chain 21K", Category: "Gold Necklaces", CostPrice: money(1500), SellingPrice: money(2200), StockQuantity: 8},
	{SKU: "GB001", Name: "Gold Bracelet 18K", Category: "Gold Bracelets", CostPrice: money(800), SellingPrice: money(1200), StockQuantity: 18},
	{SKU: "GE001", Name: "Gold Earrings 18K", Category: "Gold Earrings", CostPrice: money(350), SellingPrice: money(550), StockQuantity: 30},
	{SKU: "DR001", Name: "Diamond Ring 0.5ct", Category: "Diamond Rings", CostPrice: money(2500), SellingPrice: money(3800), StockQuantity: 5},
	{SKU: "DR002", Name: "Diamond Ring 1ct", Category: "Diamond Rings", CostPrice: money(5000), SellingPrice: money(7500), StockQuantity: 3},
	{SKU: "DN001", Name: "Diamond Necklace", Category: "Diamond Necklaces", CostPrice: money(3500), SellingPrice: money(5200), StockQuantity: 4},
	{SKU: "DE001", Name: "Diamond Earrings", Category: "Diamond Earrings", CostPrice: money(1800), SellingPrice: money(2700), StockQuantity: 7},
	{SKU: "SR001", Name: "Silver Ring 925", Category: "Silver Rings", CostPrice: money(45), SellingPrice: money(80), StockQuantity: 50},
	{SKU: "SN001", Name: "Silver Necklace 925", Category: "Silver Necklaces", CostPrice: money(85), SellingPrice: money(150), StockQuantity: 35},
	{SKU: "SB001", Name: "Silver Bracelet 925", Category: "Silver Bracelets", CostPrice: money(60), SellingPrice: money(110), StockQuantity: 40},
	{SKU: "PN001", Name: "Pearl Necklace", Category: "Pearl Jewelry", CostPrice: money(450), SellingPrice: money(750), StockQuantity: 10},
	{SKU: "PE001", Name: "Pearl Earrings", Category: "Pearl Jewelry", CostPrice: money(200), SellingPrice: money(350), StockQuantity: 20},
	{SKU: "WS001", Name: "Wedding Ring Set 18K", Category: "Wedding Sets", CostPrice: money(1200), SellingPrice: money(1850), StockQuantity: 6},
	{SKU: "WS002", Name: "Engagement Ring Set", Category: "Wedding Sets", CostPrice: money(3000), SellingPrice: money(4500), StockQuantity: 4},
	{SKU: "GR003", Name: "Gold Ring 22K Premium", Category: "Gold Rings", CostPrice: money(750), SellingPrice: money(1100), StockQuantity: 2},
	{SKU: "DR003", Name: "Diamond Pendant", Category: "Diamond Pendants", CostPrice: money(2200), SellingPrice: money(3300), StockQuantity: 1},
}

var customers = []service.CustomerInput{
	{CustomerCode: "JC001", Name: "Ahmed Hassan", Phone: "010-1234-5678", Email: "ahmed.hassan@gmail.com", Address: "15 El Tahrir Street, Dokki, Cairo", OpeningBalance: money(0)},
	{CustomerCode: "JC002", Name: "Fatima Khalil", Phone: "011-2345-6789", Email: "fatima.khalil@gmail.com", Address: "42 Salah Salem Road, Nasr City, Cairo", OpeningBalance: money(1500)},
	{CustomerCode: "JC003", Name: "Mohamed Ali", Phone: "012-3456-7890", Email: "mohamed.ali@hotmail.com", Address: "88 El Horreya Avenue, Alexandria", OpeningBalance: money(0)},
	{CustomerCode: "JC004", Name: "Mona Ibrahim", Phone: "010-4567-8901", Email: "mona.ibrahim@yahoo.com", Address: "23 Road 9, Maadi, Cairo", OpeningBalance: money(500)},
	{CustomerCode: "JC005", Name: "Omar Mostafa", Phone: "011-5678-9012", Email: "omar.mostafa@gmail.com", Address: "56 El Merghany Street, Heliopolis, Cairo", OpeningBalance: money(0)},
	{CustomerCode: "JC006", Name: "Noha Samir", Phone: "012-6789-0123", Email: "noha.samir@gmail.com", Address: "34 El Thawra Street, Giza", OpeningBalance: money(2000)},
	{CustomerCode: "JC007", Name: "Amr Abdel Rahman", Phone: "010-7890-1234", Email: "amr.abdelrahman@outlook.com", Address: "12 Mohamed Farid Street, Downtown Cairo", OpeningBalance: money(0)},
	{CustomerCode: "JC008", Name: "Laila Mahmoud", Phone: "011-8901-2345", Email: "laila.mahmoud@gmail.com", Address: "78 El Hegaz Street, Heliopolis, Cairo", OpeningBalance: money(1000)},
	{CustomerCode: "JC009", Name: "Khaled Youssef", Phone: "012-9012-3456", Email: "khaled.youssef@gmail.com", Address: "45 Stanley Bridge, Alexandria", OpeningBalance: money(0)},
	{CustomerCode: "JC010", Name: "Sara Gamal", Phone: "010-0123-4567", Email: "sara.gamal@hotmail.com", Address: "67 Road 216, Degla, Maadi, Cairo", OpeningBalance: money(750)},
	{CustomerCode: "JC011", Name: "Youssef Nabil", Phone: "011-1234-5670", Email: "youssef.nabil@gmail.com", Address: "90 Makram Ebeid Street, Nasr City, Cairo", OpeningBalance: money(0)},
	{CustomerCode: "JC012", Name: "Heba Fouad", Phone: "012-2345-6701", Email: "heba.fouad@yahoo.com", Address: "33 El Orouba Street, Heliopolis, Cairo", OpeningBalance: money(1200)},
}
