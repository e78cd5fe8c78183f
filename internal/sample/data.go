package sample

var firstNames = []string{
	"Ana", "Maria", "Juliana", "Fernanda", "Beatriz", "Camila", "Larissa", "Mariana",
	"Patrícia", "Aline", "Letícia", "Gabriela", "Rafaela", "Vanessa", "Luana", "Bruna",
	"João", "José", "Pedro", "Lucas", "Gabriel", "Rafael", "Mateus", "Gustavo",
	"Felipe", "Bruno", "Thiago", "Rodrigo", "Eduardo", "Marcelo", "André", "Leonardo",
}

var lastNames = []string{
	"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves", "Pereira",
	"Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho", "Almeida", "Lopes",
	"Soares", "Fernandes", "Vieira", "Barbosa", "Rocha", "Dias", "Nascimento", "Andrade",
	"Moreira", "Nunes", "Marques", "Machado", "Mendes", "Freitas", "Cardoso", "Teixeira",
}

// city is a locality with its state and telephone area code.
type city struct {
	name   string
	region string
	ddd    int
}

var cities = []city{
	{"São Paulo", "SP", 11},
	{"Campinas", "SP", 19},
	{"Rio de Janeiro", "RJ", 21},
	{"Belo Horizonte", "MG", 31},
	{"Curitiba", "PR", 41},
	{"Florianópolis", "SC", 48},
	{"Porto Alegre", "RS", 51},
	{"Brasília", "DF", 61},
	{"Goiânia", "GO", 62},
	{"Salvador", "BA", 71},
	{"Recife", "PE", 81},
	{"Fortaleza", "CE", 85},
	{"Belém", "PA", 91},
	{"Manaus", "AM", 92},
}

var streetKinds = []string{"Rua", "Avenida", "Travessa", "Alameda"}

var streetNames = []string{
	"das Flores", "Sete de Setembro", "Quinze de Novembro", "XV de Novembro",
	"Tiradentes", "Getúlio Vargas", "Santos Dumont", "Rui Barbosa",
	"Dom Pedro II", "José Bonifácio", "Marechal Deodoro", "Duque de Caxias",
	"Barão do Rio Branco", "Monteiro Lobato", "das Palmeiras", "dos Andradas",
}
