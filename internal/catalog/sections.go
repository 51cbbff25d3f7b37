package catalog

const (
	GroupLighting       = "lighting"
	GroupLayout         = "layout"
	GroupCostume        = "costume"
	GroupBackground     = "background"
	GroupEmotion        = "emotion"
	GroupPosesWithProps = "posesWithProps"
	GroupBodyPoses      = "bodyPoses"
)

// "Keep original" sentinels. Selecting one leaves the attribute untouched.
const (
	OriginalCostume    = "originalCostume"
	OriginalBackground = "originalBackground"
	OriginalEmotion    = "originalEmotion"
)

// PoseGroups lists the pose groups in the order their selections are unioned.
var PoseGroups = []string{GroupPosesWithProps, GroupBodyPoses}

var sections = []Section{
	{
		ID:    "step2",
		Title: "Bước 2: Chọn Phong Cách & Tùy Chỉnh",
		Groups: []OptionGroup{
			{
				ID:    GroupLighting,
				Title: "Chất ảnh & Ánh sáng",
				Kind:  KindCard,
				Options: []Option{
					{
						ID:          "vibrantRed",
						Title:       "Tông Đỏ Rực Rỡ",
						Description: "sử dụng tông màu đỏ làm chủ đạo, màu sắc rực rỡ, tương phản cao, ánh sáng studio làm nổi bật khối và chi tiết, tạo cảm giác sang trọng, lễ hội",
						Default:     true,
					},
					{
						ID:          "dramatic",
						Title:       "Ánh Sáng Kịch Tính",
						Description: "sử dụng ánh sáng mạnh và bóng đổ sâu để tạo kịch tính, làm nổi bật đường nét cơ thể và trang phục phong cách high-fashion",
					},
					{
						ID:          "gentle",
						Title:       "Dịu Dàng & Thơ Mộng",
						Description: "phong cách ảnh thơ mộng, ánh sáng mềm mại, khuếch tán, có thể có hiệu ứng sương khói nhẹ hoặc bokeh, tông màu ấm áp, lãng mạn",
					},
				},
			},
			{
				ID:    GroupLayout,
				Title: "Bố cục (Khung hình)",
				Kind:  KindPill,
				Options: []Option{
					{ID: "portrait", Title: "Chân dung", Default: true},
					{ID: "halfBody", Title: "Nửa người"},
					{ID: "fullBody", Title: "Toàn thân"},
				},
			},
			{
				ID:    GroupCostume,
				Title: "Trang phục",
				Kind:  KindPill,
				Options: []Option{
					{ID: OriginalCostume, Title: "Giữ Nguyên Gốc", Default: true},
					{ID: "yemDoVayDen", Title: "Yếm Đỏ & Váy Đen"},
					{ID: "yemVayDupTheu", Title: "Yếm & Váy Đụp Thêu"},
					{ID: "aoDaiCachTan", Title: "Áo Dài Cách Tân"},
					{ID: "yemLucVayDo", Title: "Yếm Lục & Váy Đỏ"},
				},
			},
			{
				ID:    GroupBackground,
				Title: "Phông nền",
				Kind:  KindPill,
				Options: []Option{
					{ID: OriginalBackground, Title: "Phông Nền Đỏ Studio", Default: true},
					{ID: "coTruyen", Title: "Bối Cảnh Cổ Truyền"},
					{ID: "denLong", Title: "Không Gian Đèn Lồng"},
					{ID: "toiGian", Title: "Nền Tối Giản"},
				},
			},
			{
				ID:    GroupEmotion,
				Title: "Biểu cảm",
				Kind:  KindPill,
				Options: []Option{
					{ID: OriginalEmotion, Title: "Giữ Nguyên Gốc", Default: true},
					{ID: "kyBi", Title: "Kiêu Kỳ, Cuốn Hút"},
					{ID: "tramTu", Title: "Trầm Tư, E Ấp"},
					{ID: "cuoiMim", Title: "Cười Mỉm Dịu Dàng"},
				},
			},
		},
	},
	{
		ID:          "step3",
		Title:       "Bước 3: Chọn Kiểu Dáng",
		Description: "Chọn một hoặc nhiều phong cách bạn muốn thử nghiệm.",
		Groups: []OptionGroup{
			{
				ID:            GroupPosesWithProps,
				Title:         "Duyên Dáng Cùng Đạo Cụ",
				Kind:          KindPose,
				AllowMultiple: true,
				ShowSelectAll: true,
				Options: []Option{
					{ID: "nangCanhLuuDo", Title: "Nâng Cành Lựu Đỏ", Description: "chủ thể ngồi, một tay nâng nhẹ cành lựu đỏ, tay còn lại đặt duyên dáng, ánh mắt nhìn vào ống kính"},
					{ID: "tuaBenDauLan", Title: "Tựa Bên Đầu Lân", Description: "chủ thể đứng hoặc ngồi, nghiêng mình duyên dáng bên cạnh một chiếc đầu lân sặc sỡ, một tay chạm nhẹ vào đầu lân"},
					{ID: "anNhienVoiLongChim", Title: "An Nhiên Với Lồng Chim", Description: "chủ thể ngồi, một tay cầm chiếc lồng chim cổ, ánh mắt nhìn xa xăm, tạo vẻ bình yên"},
				},
			},
			{
				ID:            GroupBodyPoses,
				Title:         "Nét Đẹp Hình Thể",
				Kind:          KindPose,
				AllowMultiple: true,
				ShowSelectAll: true,
				Options: []Option{
					{ID: "khoeTamLungTran", Title: "Khoe Tấm Lưng Trần", Description: "chủ thể quay lưng về phía máy ảnh, khoe tấm lưng trần gợi cảm của áo yếm, đầu ngoảnh lại nhìn qua vai"},
					{ID: "tayThoOTrenCo", Title: "Tay Thơ Ơ Trên Cổ", Description: "chủ thể đưa một tay lên chạm hờ vào gáy hoặc xương quai xanh, ánh mắt kiêu kỳ, cuốn hút"},
					{ID: "dangNgoiThanhTu", Title: "Dáng Ngồi Thanh Tú", Description: "chủ thể ngồi trên sàn hoặc ghế thấp, hai tay đặt mềm mại lên đùi hoặc bên cạnh, dáng người thẳng, toát lên vẻ thanh lịch"},
				},
			},
		},
	},
}

// Sections returns a deep copy of the built-in configuration.
func Sections() []Section {
	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, cloneSection(s))
	}
	return out
}

func cloneSection(s Section) Section {
	groups := make([]OptionGroup, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, cloneGroup(g))
	}
	s.Groups = groups
	return s
}

func cloneGroup(g OptionGroup) OptionGroup {
	g.Options = append([]Option(nil), g.Options...)
	return g
}
