package quizController

type question struct {
	text          string
	answers       []string
	correctAnswer string
	explanation   string
}

var questions = []question{
	{
		text:          "Com que frequência um homem pode doar sangue?",
		answers:       []string{"A cada 2 meses", "A cada 6 meses", "Uma vez por ano", "A cada 4 meses"},
		correctAnswer: "A cada 2 meses",
		explanation:   "Homens podem doar sangue a cada 2 meses (60 dias), até 4 vezes por ano. Mulheres podem doar a cada 3 meses (90 dias), até 3 doações por ano.",
	},
	{
		text:          "Com que frequência uma mulher pode doar sangue?",
		answers:       []string{"A cada 2 meses", "A cada 3 meses", "A cada 6 meses", "Uma vez por ano"},
		correctAnswer: "A cada 3 meses",
		explanation:   "O intervalo para mulheres é de 3 meses (90 dias), permitindo até 3 doações por ano. Isso se deve à reposição dos estoques de ferro, que é mais lenta.",
	},
	{
		text:          "Qual é a faixa de idade geral para ser um doador de sangue no Brasil?",
		answers:       []string{"16 a 69 anos", "18 a 60 anos", "21 a 65 anos", "Apenas maiores de 21"},
		correctAnswer: "16 a 69 anos",
		explanation:   "É preciso ter entre 16 e 69 anos. Menores (16 e 17 anos) precisam de autorização dos responsáveis. A primeira doação deve ser feita antes dos 60 anos.",
	},
	{
		text:          "O que é necessário fazer ANTES de doar sangue?",
		answers:       []string{"Estar em jejum total", "Ter dormido pelo menos 6 horas", "Tomar um analgésico", "Beber álcool na noite anterior"},
		correctAnswer: "Ter dormido pelo menos 6 horas",
		explanation:   "É fundamental estar descansado (mínimo 6h de sono), bem alimentado (evitar gorduras nas 3h anteriores) e hidratado. O jejum total NÃO é recomendado.",
	},
	{
		text:          "Doar sangue interfere no peso?",
		answers:       []string{"Sim, engorda", "Sim, emagrece", "Não interfere no peso", "Depende do tipo sanguíneo"},
		correctAnswer: "Não interfere no peso",
		explanation:   "Doar sangue não engorda nem emagrece. O volume de líquido é reposto em 24h e as células em algumas semanas, sem impacto calórico ou no peso.",
	},
}
